package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentlink/backend/internal/models"
)

func (suite *HandlersTestSuite) TestCreateClinic() {
	owner := suite.createUser("drsmith")

	w := suite.request(http.MethodPost, "/api/v1/clinics", owner.ID, map[string]interface{}{
		"name":     "Smile Clinic",
		"location": "Lisbon, Portugal",
		"services": []string{"implants", "whitening"},
		"website":  "https://smile.example.com",
	})

	require.Equal(suite.T(), http.StatusCreated, w.Code)
	resp := suite.decode(w)
	clinic := resp["clinic"].(map[string]interface{})
	assert.Equal(suite.T(), "Smile Clinic", clinic["name"])
	assert.Equal(suite.T(), owner.ID, clinic["owner_id"])
}

func (suite *HandlersTestSuite) TestUpdateClinicOnlyOwner() {
	owner := suite.createUser("drsmith")
	other := suite.createUser("drjones")

	clinic := &models.Clinic{OwnerID: owner.ID, Name: "Smile Clinic"}
	require.NoError(suite.T(), suite.db.Create(clinic).Error)

	w := suite.request(http.MethodPut, "/api/v1/clinics/"+clinic.ID, other.ID, map[string]interface{}{
		"name": "Hostile Takeover Dental",
	})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPut, "/api/v1/clinics/"+clinic.ID, owner.ID, map[string]interface{}{
		"name": "Brighter Smile Clinic",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Clinic
	require.NoError(suite.T(), suite.db.First(&reloaded, "id = ?", clinic.ID).Error)
	assert.Equal(suite.T(), "Brighter Smile Clinic", reloaded.Name)
}

func (suite *HandlersTestSuite) TestListClinicsByLocation() {
	owner := suite.createUser("drsmith")
	require.NoError(suite.T(), suite.db.Create(&models.Clinic{
		OwnerID: owner.ID, Name: "Lisbon Dental", Location: "Lisbon",
	}).Error)
	require.NoError(suite.T(), suite.db.Create(&models.Clinic{
		OwnerID: owner.ID, Name: "Porto Dental", Location: "Porto",
	}).Error)

	w := suite.request(http.MethodGet, "/api/v1/clinics?location=Lisbon", owner.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	clinics := resp["clinics"].([]interface{})
	require.Len(suite.T(), clinics, 1)
	assert.Equal(suite.T(), "Lisbon Dental", clinics[0].(map[string]interface{})["name"])
}

func (suite *HandlersTestSuite) TestDeleteClinic() {
	owner := suite.createUser("drsmith")
	clinic := &models.Clinic{OwnerID: owner.ID, Name: "Closing Down Dental"}
	require.NoError(suite.T(), suite.db.Create(clinic).Error)

	w := suite.request(http.MethodDelete, "/api/v1/clinics/"+clinic.ID, owner.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/clinics/"+clinic.ID, owner.ID, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}
