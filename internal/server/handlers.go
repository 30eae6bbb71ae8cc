package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/vitalityhub/vitality-helper/internal/chat"
	"github.com/vitalityhub/vitality-helper/internal/database"
	"github.com/vitalityhub/vitality-helper/internal/httputil"
	"github.com/vitalityhub/vitality-helper/internal/services"
)

// chatSessionID keys the assistant conversation. Single-tenant, so one
// session.
const chatSessionID = "default"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- user ----

type userView struct {
	ID                 uint       `json:"id"`
	Name               string     `json:"name"`
	Coins              int        `json:"coins"`
	BuddyName          string     `json:"buddy_name"`
	BuddyContact       string     `json:"buddy_contact"`
	LastAdvisorConsult *time.Time `json:"last_advisor_consult,omitempty"`
	Streak             int        `json:"streak"`
	LastActiveDate     string     `json:"last_active_date,omitempty"`
	Age                int        `json:"age,omitempty"`
	Weight             float64    `json:"weight,omitempty"`
	Height             float64    `json:"height,omitempty"`
	HealthGoals        string     `json:"health_goals,omitempty"`
	MedicalConditions  []string   `json:"medical_conditions"`
}

func newUserView(u *database.User) userView {
	conditions := services.Conditions(u)
	if conditions == nil {
		conditions = []string{}
	}
	return userView{
		ID:                 u.ID,
		Name:               u.Name,
		Coins:              u.Coins,
		BuddyName:          u.BuddyName,
		BuddyContact:       u.BuddyContact,
		LastAdvisorConsult: u.LastAdvisorConsult,
		Streak:             u.Streak,
		LastActiveDate:     u.LastActiveDate,
		Age:                u.Age,
		Weight:             u.Weight,
		Height:             u.Height,
		HealthGoals:        u.HealthGoals,
		MedicalConditions:  conditions,
	}
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.User.GetUser(r.Context(), s.userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name              string   `json:"name"`
		Age               int      `json:"age"`
		Weight            float64  `json:"weight"`
		Height            float64  `json:"height"`
		HealthGoals       string   `json:"health_goals"`
		BuddyName         string   `json:"buddy_name"`
		BuddyContact      string   `json:"buddy_contact"`
		MedicalConditions []string `json:"medical_conditions"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	err := s.svc.User.UpdateProfile(r.Context(), s.userID, services.ProfileUpdate{
		Name:              input.Name,
		Age:               input.Age,
		Weight:            input.Weight,
		Height:            input.Height,
		HealthGoals:       input.HealthGoals,
		BuddyName:         input.BuddyName,
		BuddyContact:      input.BuddyContact,
		MedicalConditions: input.MedicalConditions,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ---- mood ----

type moodLogView struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleMoodHistory(w http.ResponseWriter, r *http.Request) {
	logs, err := s.svc.Mood.GetHistory(r.Context(), s.userID, historyLimit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	views := make([]moodLogView, 0, len(logs))
	for _, l := range logs {
		views = append(views, moodLogView{ID: l.ID, Rating: l.Rating, Notes: l.Notes, CreatedAt: l.CreatedAt})
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (s *Server) handleLogMood(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Rating int    `json:"rating"`
		Notes  string `json:"notes"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	alertTriggered, err := s.svc.Mood.LogMood(r.Context(), s.userID, input.Rating, input.Notes)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{
		"success":        true,
		"alertTriggered": alertTriggered,
	})
}

// ---- fitness ----

type fitnessLogView struct {
	ID        uint      `json:"id"`
	Steps     int       `json:"steps"`
	Duration  int       `json:"duration"`
	Calories  int       `json:"calories"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleFitnessHistory(w http.ResponseWriter, r *http.Request) {
	logs, err := s.svc.Fitness.GetHistory(r.Context(), s.userID, historyLimit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	views := make([]fitnessLogView, 0, len(logs))
	for _, l := range logs {
		views = append(views, fitnessLogView{ID: l.ID, Steps: l.Steps, Duration: l.Duration, Calories: l.Calories, CreatedAt: l.CreatedAt})
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (s *Server) handleLogFitness(w http.ResponseWriter, r *http.Request) {
	// Numeric fields arrive untyped: the boundary coerces non-numeric
	// input to 0 instead of rejecting it.
	var input struct {
		Steps    interface{} `json:"steps"`
		Duration interface{} `json:"duration"`
		Calories interface{} `json:"calories"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	coinsAdded, err := s.svc.Fitness.LogActivity(r.Context(), s.userID,
		coerceCount(input.Steps), coerceCount(input.Duration), coerceCount(input.Calories))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"coinsAdded": coinsAdded,
	})
}

// coerceCount sanitizes a loosely-typed count: JSON numbers are truncated,
// numeric strings parsed, everything else (and negatives) becomes 0.
func coerceCount(v interface{}) int {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || parsed < 0 {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// ---- medications ----

type medicationView struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Frequency    string     `json:"frequency"`
	Time         string     `json:"time"`
	LastTaken    *time.Time `json:"last_taken,omitempty"`
	SnoozedUntil string     `json:"snoozed_until,omitempty"`
	TakenToday   bool       `json:"taken_today"`
	DueNow       bool       `json:"due_now"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newMedicationView(m *database.Medication, now time.Time) medicationView {
	return medicationView{
		ID:           m.ID,
		Name:         m.Name,
		Frequency:    m.Frequency,
		Time:         m.Time,
		LastTaken:    m.LastTaken,
		SnoozedUntil: m.SnoozedUntil,
		TakenToday:   services.TakenOn(m.LastTaken, now),
		DueNow:       services.IsDue(m, now),
		CreatedAt:    m.CreatedAt,
	}
}

func (s *Server) handleListMedications(w http.ResponseWriter, r *http.Request) {
	meds, err := s.svc.Medication.List(r.Context(), s.userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	now := time.Now()
	views := make([]medicationView, 0, len(meds))
	for i := range meds {
		views = append(views, newMedicationView(&meds[i], now))
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (s *Server) handleAddMedication(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name      string `json:"name"`
		Frequency string `json:"frequency"`
		Time      string `json:"time"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	med, err := s.svc.Medication.Add(r.Context(), s.userID, input.Name, input.Frequency, input.Time)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      med.ID,
	})
}

func (s *Server) handleUpdateMedication(w http.ResponseWriter, r *http.Request) {
	medID, ok := pathID(w, r)
	if !ok {
		return
	}

	var input struct {
		Name      string `json:"name"`
		Frequency string `json:"frequency"`
		Time      string `json:"time"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	if err := s.svc.Medication.Update(r.Context(), s.userID, medID, input.Name, input.Frequency, input.Time); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteMedication(w http.ResponseWriter, r *http.Request) {
	medID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.svc.Medication.Delete(r.Context(), s.userID, medID); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleTakeMedication(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ID uint `json:"id"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	if err := s.svc.Medication.Take(r.Context(), s.userID, input.ID); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSnoozeMedication(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ID    uint   `json:"id"`
		Until string `json:"until"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	if err := s.svc.Medication.Snooze(r.Context(), s.userID, input.ID, input.Until); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ---- friends & leaderboard ----

type friendView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := s.svc.Friend.List(r.Context(), s.userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	views := make([]friendView, 0, len(friends))
	for _, f := range friends {
		views = append(views, friendView{ID: f.ID, Name: f.Name, Score: f.Score})
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	friend, err := s.svc.Friend.Add(r.Context(), s.userID, input.Name)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      friend.ID,
	})
}

func (s *Server) handleDeleteFriend(w http.ResponseWriter, r *http.Request) {
	friendID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.svc.Friend.Delete(r.Context(), s.userID, friendID); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.svc.Friend.Leaderboard(r.Context(), s.userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, board)
}

// ---- buddy alerts ----

type alertView struct {
	ID        uint      `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.Buddy.PendingAlerts(r.Context(), s.userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, alertView{ID: a.ID, Status: a.Status, CreatedAt: a.CreatedAt})
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (s *Server) handleBuddyRespond(w http.ResponseWriter, r *http.Request) {
	// Body is optional: without an alert id the oldest pending alert is
	// resolved.
	var input struct {
		AlertID uint `json:"alert_id"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if !httputil.DecodeJSON(w, r, &input) {
			return
		}
	}

	if err := s.svc.Buddy.Respond(r.Context(), s.userID, input.AlertID); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ---- advisory ----

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := s.svc.User.GetUser(ctx, s.userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	latestMood, err := s.svc.Mood.Latest(ctx, s.userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	mood := 3 // neutral until the first log
	if latestMood != nil {
		mood = latestMood.Rating
	}

	steps, err := s.svc.Fitness.StepsOnDay(ctx, s.userID, time.Now())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	meds, err := s.svc.Medication.List(ctx, s.userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	medNames := make([]string, 0, len(meds))
	for _, m := range meds {
		medNames = append(medNames, m.Name)
	}

	advice := s.svc.AI.HealthAdvice(ctx, services.AdviceInput{
		Mood:        mood,
		Steps:       steps,
		Medications: medNames,
		Conditions:  services.Conditions(user),
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"advice": advice})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Message string `json:"message"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		httputil.BadRequest(w, "message is required")
		return
	}

	ctx := r.Context()
	user, err := s.svc.User.GetUser(ctx, s.userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	history, err := s.chatHistory.Get(ctx, chatSessionID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	reply := s.svc.AI.ChatReply(ctx, input.Message, history, services.Conditions(user))

	if err := s.chatHistory.Append(ctx, chatSessionID,
		chat.Message{Role: chat.RoleUser, Text: input.Message},
		chat.Message{Role: chat.RoleModel, Text: reply},
	); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleRedeemConsultation(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.User.RedeemConsultation(r.Context(), s.userID); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// pathID parses the {id} route variable. The route pattern already
// guarantees digits, so failures are limited to overflow.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.BadRequest(w, "invalid id")
		return 0, false
	}
	return uint(id), true
}
