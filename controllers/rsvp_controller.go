package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wanjohi/questioner/models"
	"github.com/wanjohi/questioner/monitoring"
	"github.com/wanjohi/questioner/utils"
)

// RsvpController manages attendance responses for meetups.
type RsvpController struct {
	db *gorm.DB
}

// NewRsvpController creates a new RsvpController instance.
func NewRsvpController(db *gorm.DB) *RsvpController {
	return &RsvpController{db: db}
}

// Create records or replaces the caller's RSVP for a meetup.
func (r *RsvpController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	meetupID, found := pathUint(ctx, "meetup_id")
	if found {
		found = r.db.First(&models.Meetup{}, meetupID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, "A meetup with that id does not exist")
		return
	}

	var req struct {
		Response string `json:"response" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "RSVP, can only take Yes, No or Maybe")
		return
	}
	response, ok := normalizeRsvp(req.Response)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "RSVP, can only take Yes, No or Maybe")
		return
	}

	rsvp := models.Rsvp{Response: response, MeetupID: meetupID, ResponderID: userID}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meetup_id"}, {Name: "responder_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"response", "updated_at"}),
	}).Create(&rsvp).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to record rsvp")
		return
	}
	monitoring.CountRsvp()
	ctx.JSON(http.StatusCreated, rsvp)
}

// ListForMeetup returns a meetup's RSVPs together with their tallies.
func (r *RsvpController) ListForMeetup(ctx *gin.Context) {
	meetupID, found := pathUint(ctx, "meetup_id")
	if found {
		found = r.db.First(&models.Meetup{}, meetupID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, "A meetup with that id does not exist")
		return
	}

	var rsvps []models.Rsvp
	if err := r.db.Where("meetup_id = ?", meetupID).Order("created_at ASC").Find(&rsvps).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list rsvps")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"rsvps":        rsvps,
		"rsvp_summary": rsvpSummary(r.db, meetupID),
	})
}

// ListAll returns every RSVP in the system with overall tallies.
func (r *RsvpController) ListAll(ctx *gin.Context) {
	var rsvps []models.Rsvp
	if err := r.db.Order("created_at ASC").Find(&rsvps).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list rsvps")
		return
	}

	var summary models.RsvpSummary
	r.db.Model(&models.Rsvp{}).Where("response = ?", "yes").Count(&summary.Yes)
	r.db.Model(&models.Rsvp{}).Where("response = ?", "no").Count(&summary.No)
	r.db.Model(&models.Rsvp{}).Where("response = ?", "maybe").Count(&summary.Maybe)
	ctx.JSON(http.StatusOK, gin.H{"rsvps": rsvps, "rsvp_summary": summary})
}

// normalizeRsvp accepts any value containing yes, no or maybe regardless of
// case and maps it to the canonical response.
func normalizeRsvp(raw string) (string, bool) {
	lowered := strings.ToLower(raw)
	for _, valid := range []string{"maybe", "yes", "no"} {
		if strings.Contains(lowered, valid) {
			return valid, true
		}
	}
	return "", false
}

func rsvpSummary(db *gorm.DB, meetupID uint) models.RsvpSummary {
	var summary models.RsvpSummary
	db.Model(&models.Rsvp{}).Where("meetup_id = ? AND response = ?", meetupID, "yes").Count(&summary.Yes)
	db.Model(&models.Rsvp{}).Where("meetup_id = ? AND response = ?", meetupID, "no").Count(&summary.No)
	db.Model(&models.Rsvp{}).Where("meetup_id = ? AND response = ?", meetupID, "maybe").Count(&summary.Maybe)
	return summary
}
