package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"visit_tracker/internal/apperrors"
	"visit_tracker/internal/middleware"
	"visit_tracker/internal/models"
	"visit_tracker/internal/visits"
)

// visitInput is the visit entry form. Formats are checked here so the
// engine can assume well-formed input.
type visitInput struct {
	Name          string          `json:"name" binding:"required"`
	PhoneNumber   string          `json:"phone_number" binding:"required,in_phone"`
	DLNumber      string          `json:"dl_number" binding:"required,in_dl"`
	VehicleNumber string          `json:"vehicle_number" binding:"required,in_vehicle"`
	DriverID      string          `json:"driver_id"`
	Location      json.RawMessage `json:"location"` // optional GeoJSON Point
}

type VisitController struct {
	Engine *visits.Engine
}

// RecordVisit registers a driver on first sight, otherwise counts the visit
// and tells the desk when the driver is due a payment.
func (vc *VisitController) RecordVisit(c *gin.Context) {
	var input visitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	location, err := parsePoint(input.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location: " + err.Error()})
		return
	}

	sub := visits.Submission{
		Name:          strings.TrimSpace(input.Name),
		PhoneNumber:   strings.TrimSpace(input.PhoneNumber),
		DLNumber:      strings.TrimSpace(input.DLNumber),
		VehicleNumber: strings.TrimSpace(input.VehicleNumber),
		DriverID:      strings.TrimSpace(input.DriverID),
		Location:      location,
	}
	if id, ok := middleware.IdentityFromContext(c.Request.Context()); ok {
		sub.RecordedBy = id.Username
	}

	res, err := vc.Engine.RecordVisit(c.Request.Context(), sub)
	if err != nil {
		logrus.WithError(err).WithField("vehicle_number", sub.VehicleNumber).Error("RecordVisit failed")
		c.JSON(apperrors.CheckError(err), gin.H{"error": err.Error()})
		return
	}

	if res.Kind == models.VisitPaid {
		c.JSON(http.StatusOK, gin.H{"message": res.Message, "visit_count": res.VisitCount})
		return
	}
	c.JSON(http.StatusOK, gin.H{"visit_count": res.VisitCount})
}
