package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"visit_tracker/internal/apperrors"
	"visit_tracker/internal/directory"
	"visit_tracker/internal/models"
	"visit_tracker/internal/visits"
)

type DriverController struct {
	Directory directory.Directory
}

// visitEventResponse mirrors models.VisitEvent with the location as GeoJSON.
type visitEventResponse struct {
	ID         uint             `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Kind       models.VisitKind `json:"kind"`
	VisitCount int              `json:"visit_count"`
	RecordedBy string           `json:"recorded_by"`
	Location   json.RawMessage  `json:"location,omitempty"`
}

// SearchDriver finds a driver by vehicle number or driver id.
func (dc *DriverController) SearchDriver(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required."})
		return
	}

	driver, found, err := visits.Search(c.Request.Context(), dc.Directory, query)
	if err != nil {
		logrus.WithError(err).WithField("query", query).Error("SearchDriver failed")
		c.JSON(apperrors.CheckError(err), gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

// ListDrivers returns every driver in persistence order.
func (dc *DriverController) ListDrivers(c *gin.Context) {
	drivers, err := dc.Directory.ListAll(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("ListDrivers failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching drivers: " + err.Error()})
		return
	}
	if drivers == nil {
		drivers = []models.Driver{}
	}

	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

// ListVisits returns the visit history of one driver (by primary key).
func (dc *DriverController) ListVisits(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	events, err := dc.Directory.ListEvents(c.Request.Context(), uint(id))
	if err != nil {
		logrus.WithError(err).WithField("driver_ref", id).Error("ListVisits failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching visits: " + err.Error()})
		return
	}

	out := make([]visitEventResponse, 0, len(events))
	for _, e := range events {
		loc, err := pointToGeoJSON(e.Location)
		if err != nil {
			logrus.WithError(err).WithField("event_id", e.ID).Warn("Stored visit location is not valid WKB")
		}
		out = append(out, visitEventResponse{
			ID:         e.ID,
			CreatedAt:  e.CreatedAt,
			Kind:       e.Kind,
			VisitCount: e.VisitCount,
			RecordedBy: e.RecordedBy,
			Location:   loc,
		})
	}

	c.JSON(http.StatusOK, gin.H{"events": out})
}
