package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dentlink/backend/internal/logger"
	"github.com/dentlink/backend/internal/models"
)

var specialties = []string{
	"orthodontics", "endodontics", "periodontics", "prosthodontics",
	"oral_surgery", "pediatric_dentistry", "implantology", "general_dentistry",
}

var procedureTypes = []string{
	"implant", "veneer", "root_canal", "crown", "bridge", "whitening",
	"extraction", "composite_restoration", "sinus_lift", "bone_graft",
}

var credentials = []string{"DDS", "DMD", "BDS", "MDS"}

var forumCategories = []string{"clinical", "practice_management", "equipment", "education"}

var clinicServices = []string{
	"implants", "whitening", "orthodontics", "endodontics", "hygiene",
	"pediatric", "prosthetics", "surgery",
}

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev fills a development database with realistic practitioner data
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating users...")
	users, err := s.seedUsers(100)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating follow graph...")
	if err := s.seedFollows(users, 400); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log("Creating cases...")
	cases, err := s.seedCases(users, 300)
	if err != nil {
		return fmt.Errorf("failed to seed cases: %w", err)
	}

	log("Creating saved cases...")
	if err := s.seedSavedCases(users, cases, 600); err != nil {
		return fmt.Errorf("failed to seed saved cases: %w", err)
	}

	log("Creating forum threads...")
	threads, err := s.seedThreads(users, 80)
	if err != nil {
		return fmt.Errorf("failed to seed threads: %w", err)
	}

	log("Creating forum replies...")
	if err := s.seedReplies(users, threads, 400); err != nil {
		return fmt.Errorf("failed to seed replies: %w", err)
	}

	log("Creating clinics...")
	if err := s.seedClinics(users, 30); err != nil {
		return fmt.Errorf("failed to seed clinics: %w", err)
	}

	return nil
}

// SeedTest creates a small fixed set of accounts for end-to-end tests
func (s *Seeder) SeedTest() error {
	testUserSpecs := []struct {
		username    string
		email       string
		displayName string
		specialty   string
	}{
		{"alice", "alice@example.com", "Dr. Alice Smith", "orthodontics"},
		{"bob", "bob@example.com", "Dr. Bob Johnson", "implantology"},
		{"charlie", "charlie@example.com", "Dr. Charlie Brown", "endodontics"},
	}

	var users []models.User
	for _, spec := range testUserSpecs {
		var user models.User
		err := s.db.Where("username = ? OR email = ?", spec.username, spec.email).First(&user).Error
		if err == nil {
			users = append(users, user)
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		hashStr := string(hashedPassword)

		user = models.User{
			Email:           spec.email,
			Username:        spec.username,
			DisplayName:     spec.displayName,
			PasswordHash:    &hashStr,
			EmailVerified:   true,
			AvatarURL:       fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", spec.username),
			Credential:      "DDS",
			Specialty:       spec.specialty,
			VerifiedDentist: true,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", spec.username, err)
		}
		users = append(users, user)
	}

	if _, err := s.seedCases(users, 10); err != nil {
		return fmt.Errorf("failed to seed cases: %w", err)
	}
	if _, err := s.seedThreads(users, 5); err != nil {
		return fmt.Errorf("failed to seed threads: %w", err)
	}

	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hashedPassword)

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		specialty := specialties[rand.Intn(len(specialties))]

		procedures := models.StringArray{}
		for j := 0; j < 2+rand.Intn(3); j++ {
			procedures = append(procedures, procedureTypes[rand.Intn(len(procedureTypes))])
		}

		user := models.User{
			Email:           fmt.Sprintf("%s@example.com", username),
			Username:        username,
			DisplayName:     "Dr. " + gofakeit.Name(),
			Bio:             gofakeit.Sentence(12),
			Location:        fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
			PasswordHash:    &hashStr,
			EmailVerified:   true,
			AvatarURL:       fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
			Headline:        fmt.Sprintf("%s at %s", specialty, gofakeit.Company()),
			Specialty:       specialty,
			Credential:      credentials[rand.Intn(len(credentials))],
			Procedures:      procedures,
			VerifiedDentist: rand.Float32() < 0.7,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedFollows(users []models.User, count int) error {
	if len(users) < 2 {
		return nil
	}
	created := map[string]bool{}
	for i := 0; i < count; i++ {
		follower := users[rand.Intn(len(users))]
		following := users[rand.Intn(len(users))]
		key := follower.ID + ":" + following.ID
		if follower.ID == following.ID || created[key] {
			continue
		}
		created[key] = true

		follow := models.Follow{FollowerID: follower.ID, FollowingID: following.ID}
		if err := s.db.Create(&follow).Error; err != nil {
			return err
		}
		s.db.Model(&models.User{}).Where("id = ?", following.ID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + 1"))
		s.db.Model(&models.User{}).Where("id = ?", follower.ID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1"))
	}
	return nil
}

func (s *Seeder) seedCases(users []models.User, count int) ([]models.Case, error) {
	cases := make([]models.Case, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		procedure := procedureTypes[rand.Intn(len(procedureTypes))]

		materials := models.StringArray{}
		for j := 0; j < 1+rand.Intn(3); j++ {
			materials = append(materials, gofakeit.ProductMaterial())
		}

		clinicalCase := models.Case{
			AuthorID:      author.ID,
			Title:         fmt.Sprintf("%s rehabilitation, tooth %d", procedure, 11+rand.Intn(37)),
			Description:   gofakeit.Paragraph(2, 4, 12, " "),
			ProcedureType: procedure,
			ToothNotation: fmt.Sprintf("%d", 11+rand.Intn(37)),
			Materials:     materials,
			DurationWeeks: 1 + rand.Intn(52),
			// Most seeded cases are consented so the feed has content
			PatientConsent: rand.Float32() < 0.85,
			IsPublic:       rand.Float32() < 0.95,
			ViewsCount:     rand.Intn(500),
			SavesCount:     rand.Intn(50),
			CreatedAt:      gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()),
		}
		if err := s.db.Create(&clinicalCase).Error; err != nil {
			return nil, err
		}
		s.db.Model(&models.User{}).Where("id = ?", author.ID).
			UpdateColumn("case_count", gorm.Expr("case_count + 1"))
		cases = append(cases, clinicalCase)
	}
	return cases, nil
}

func (s *Seeder) seedSavedCases(users []models.User, cases []models.Case, count int) error {
	if len(cases) == 0 {
		return nil
	}
	created := map[string]bool{}
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		clinicalCase := cases[rand.Intn(len(cases))]
		key := user.ID + ":" + clinicalCase.ID
		if created[key] || user.ID == clinicalCase.AuthorID {
			continue
		}
		created[key] = true

		saved := models.SavedCase{UserID: user.ID, CaseID: clinicalCase.ID}
		if err := s.db.Create(&saved).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedThreads(users []models.User, count int) ([]models.ForumThread, error) {
	threads := make([]models.ForumThread, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		createdAt := gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now())

		thread := models.ForumThread{
			AuthorID:       author.ID,
			Title:          gofakeit.Question(),
			Body:           gofakeit.Paragraph(2, 5, 15, " "),
			Category:       forumCategories[rand.Intn(len(forumCategories))],
			ViewsCount:     rand.Intn(300),
			CreatedAt:      createdAt,
			LastActivityAt: createdAt,
		}
		if err := s.db.Create(&thread).Error; err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

func (s *Seeder) seedReplies(users []models.User, threads []models.ForumThread, count int) error {
	if len(threads) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		thread := threads[rand.Intn(len(threads))]

		reply := models.ForumReply{
			ThreadID:  thread.ID,
			AuthorID:  author.ID,
			Body:      gofakeit.Sentence(15),
			CreatedAt: gofakeit.DateRange(thread.CreatedAt, time.Now()),
		}
		if err := s.db.Create(&reply).Error; err != nil {
			return err
		}
		s.db.Model(&models.ForumThread{}).Where("id = ?", thread.ID).
			Updates(map[string]interface{}{
				"replies_count":    gorm.Expr("replies_count + 1"),
				"last_activity_at": reply.CreatedAt,
			})
	}
	return nil
}

func (s *Seeder) seedClinics(users []models.User, count int) error {
	for i := 0; i < count && i < len(users); i++ {
		owner := users[i]

		services := models.StringArray{}
		for j := 0; j < 2+rand.Intn(4); j++ {
			services = append(services, clinicServices[rand.Intn(len(clinicServices))])
		}

		clinic := models.Clinic{
			OwnerID:     owner.ID,
			Name:        gofakeit.Company() + " Dental",
			Description: gofakeit.Paragraph(1, 3, 12, " "),
			Location:    fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
			Address:     gofakeit.Address().Address,
			Services:    services,
			Website:     gofakeit.URL(),
			Phone:       gofakeit.Phone(),
		}
		if err := s.db.Create(&clinic).Error; err != nil {
			return err
		}
	}
	return nil
}
