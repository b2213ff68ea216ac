package services

import (
	"context"
	"encoding/json"
	"sync"

	"gorm.io/datatypes"

	"gigwork_backend/internal/dispatch"
	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/payments"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"
)

// gigLocks serializes multi-step mutations per gig. The repository CAS and
// the ledger transaction are the second line of defense; this keeps the
// common path free of conflict errors.
type gigLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGigLocks() *gigLocks {
	return &gigLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *gigLocks) lock(gigID string) func() {
	l.mu.Lock()
	m, ok := l.locks[gigID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[gigID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// GigService orchestrates the interest-and-assignment workflow: gigs,
// interest expressions, decisions and the notifications they produce.
type GigService struct {
	gigRepo      repositories.GigRepository
	interestRepo repositories.InterestRepository
	profiles     repositories.ProfileDirectory
	dispatcher   *dispatch.Dispatcher
	payments     payments.Provider

	locks *gigLocks
}

func NewGigService(
	gigRepo repositories.GigRepository,
	interestRepo repositories.InterestRepository,
	profiles repositories.ProfileDirectory,
	dispatcher *dispatch.Dispatcher,
	paymentProvider payments.Provider,
) *GigService {
	return &GigService{
		gigRepo:      gigRepo,
		interestRepo: interestRepo,
		profiles:     profiles,
		dispatcher:   dispatcher,
		payments:     paymentProvider,
		locks:        newGigLocks(),
	}
}

// --- Gig operations ---

func (s *GigService) CreateGig(ctx context.Context, req *dto.CreateGigRequest) (*dto.GigResponse, error) {
	if req.Title == "" {
		return nil, apperrors.ValidationError(map[string]string{"title": "This field is required"})
	}
	if req.PayAmount <= 0 {
		return nil, apperrors.ValidationError(map[string]string{"pay_amount": "Must be greater than 0"})
	}

	gig := &models.Gig{
		InstitutionID: req.InstitutionID,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		PayAmount:     req.PayAmount,
		DurationHours: req.DurationHours,
		IsUrgent:      req.IsUrgent,
		Status:        models.GigStatusOpen,
		StartDate:     req.StartDate,
		ExpiryDate:    req.ExpiryDate,
	}

	if err := s.gigRepo.Create(ctx, gig); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewGigResponse(gig), nil
}

func (s *GigService) GetGig(ctx context.Context, gigID string) (*dto.GigResponse, error) {
	gig, err := s.gigRepo.GetByID(ctx, gigID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return dto.NewGigResponse(gig), nil
}

func (s *GigService) ListOpenGigs(ctx context.Context, urgentOnly bool) ([]dto.GigResponse, error) {
	gigs, err := s.gigRepo.ListOpen(ctx, urgentOnly)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.toGigResponses(gigs), nil
}

// GetInstitutionGigs returns the institution's own gigs enriched with the
// interest count and, where assigned, the professional's profile.
func (s *GigService) GetInstitutionGigs(ctx context.Context, institutionID string) ([]dto.GigResponse, error) {
	gigs, err := s.gigRepo.ListByInstitution(ctx, institutionID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.GigResponse, 0, len(gigs))
	for i := range gigs {
		view := dto.NewGigResponse(&gigs[i])

		count, err := s.interestRepo.CountByGig(ctx, gigs[i].ID)
		if err == nil {
			view.InterestCount = &count
		}
		if gigs[i].AssignedProfessionalID != nil {
			view.AssignedProfessional = s.lookupProfile(ctx, *gigs[i].AssignedProfessionalID)
		}
		out = append(out, *view)
	}
	return out, nil
}

// GetProfessionalGigs returns gigs assigned to the professional plus gigs
// they have a live interest in.
func (s *GigService) GetProfessionalGigs(ctx context.Context, professionalID string) ([]dto.GigResponse, error) {
	assigned, err := s.gigRepo.ListAssignedTo(ctx, professionalID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	seen := make(map[string]bool, len(assigned))
	out := make([]dto.GigResponse, 0, len(assigned))
	for i := range assigned {
		seen[assigned[i].ID] = true
		out = append(out, *dto.NewGigResponse(&assigned[i]))
	}

	interests, err := s.interestRepo.ListByProfessional(ctx, professionalID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	for _, in := range interests {
		if seen[in.GigID] {
			continue
		}
		gig, err := s.gigRepo.GetByID(ctx, in.GigID)
		if err != nil {
			continue
		}
		out = append(out, *dto.NewGigResponse(gig))
	}
	return out, nil
}

// --- Interest operations ---

func (s *GigService) ExpressInterest(ctx context.Context, gigID, professionalID string) (*models.JobInterest, error) {
	unlock := s.locks.lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetByID(ctx, gigID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if gig.Status != models.GigStatusOpen {
		return nil, apperrors.ErrGigNotOpen
	}

	interest := &models.JobInterest{
		GigID:          gigID,
		ProfessionalID: professionalID,
		Status:         models.InterestStatusPending,
	}
	if err := s.interestRepo.Create(ctx, interest); err != nil {
		return nil, translateRepoError(err)
	}

	payload := notificationPayload{
		GigID:            gig.ID,
		GigTitle:         gig.Title,
		ProfessionalID:   professionalID,
		ProfessionalName: s.profileName(ctx, professionalID),
	}
	s.publish(ctx, gig.InstitutionID, models.NotificationInterestReceived,
		"New interest in your gig",
		"A professional has expressed interest in \""+gig.Title+"\"", payload)

	return interest, nil
}

func (s *GigService) CheckInterest(ctx context.Context, gigID, professionalID string) (*dto.InterestCheckResponse, error) {
	interest, err := s.interestRepo.Get(ctx, gigID, professionalID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrNotFound) {
			return &dto.InterestCheckResponse{Interested: false}, nil
		}
		return nil, apperrors.InternalError(err)
	}
	return &dto.InterestCheckResponse{Interested: true, Status: interest.Status}, nil
}

// GetInterestedProfessionals lists the gig's interest expressions joined
// with profile summaries from the directory. Owner only.
func (s *GigService) GetInterestedProfessionals(ctx context.Context, gigID, requesterID string) ([]dto.InterestSummary, error) {
	gig, err := s.gigRepo.GetByID(ctx, gigID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if gig.InstitutionID != requesterID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	interests, err := s.interestRepo.ListByGig(ctx, gigID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.InterestSummary, 0, len(interests))
	for _, in := range interests {
		out = append(out, dto.InterestSummary{
			ID:             in.ID,
			ProfessionalID: in.ProfessionalID,
			Status:         in.Status,
			Professional:   s.lookupProfile(ctx, in.ProfessionalID),
			CreatedAt:      in.CreatedAt,
		})
	}
	return out, nil
}

// DecideInterest applies the institution's accept/decline decision. Accept
// assigns the gig and auto-declines every other pending expression in the
// same atomic step inside the ledger, then notifies the winner and each
// loser. Decline notifies only the declined professional.
func (s *GigService) DecideInterest(ctx context.Context, gigID, professionalID, requesterID string, decision models.InterestStatus) (*dto.GigResponse, error) {
	if decision != models.InterestStatusAccepted && decision != models.InterestStatusDeclined {
		return nil, apperrors.ValidationError(map[string]string{"decision": "Must be one of: accepted, declined"})
	}

	unlock := s.locks.lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetByID(ctx, gigID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if gig.InstitutionID != requesterID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if gig.Status != models.GigStatusOpen {
		return nil, apperrors.ErrGigNotOpen
	}

	result, err := s.interestRepo.Decide(ctx, gigID, professionalID, decision)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if decision == models.InterestStatusAccepted {
		gig = result.Gig
		s.initiatePaymentAsync(gig)
	}

	institutionName := s.profileName(ctx, gig.InstitutionID)
	s.notifyDecision(ctx, gig, result.Decided, institutionName)
	for i := range result.AutoDeclined {
		s.notifyDecision(ctx, gig, &result.AutoDeclined[i], institutionName)
	}

	return dto.NewGigResponse(gig), nil
}

// AssignProfessional assigns the gig directly by professional ID. It is the
// accept decision with the expression created on the fly when the
// professional never expressed interest themselves.
func (s *GigService) AssignProfessional(ctx context.Context, gigID, professionalID, requesterID string) (*dto.GigResponse, error) {
	_, err := s.interestRepo.Get(ctx, gigID, professionalID)
	if apperrors.Is(err, repositories.ErrNotFound) {
		gig, gigErr := s.gigRepo.GetByID(ctx, gigID)
		if gigErr != nil {
			return nil, translateRepoError(gigErr)
		}
		if gig.InstitutionID != requesterID {
			return nil, apperrors.ErrInsufficientPermissions
		}
		createErr := s.interestRepo.Create(ctx, &models.JobInterest{
			GigID:          gigID,
			ProfessionalID: professionalID,
			Status:         models.InterestStatusPending,
		})
		if createErr != nil && !apperrors.Is(createErr, repositories.ErrInterestExists) {
			return nil, translateRepoError(createErr)
		}
	} else if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.DecideInterest(ctx, gigID, professionalID, requesterID, models.InterestStatusAccepted)
}

// CloseGig soft-closes an open gig. A gig with an accepted expression is
// already assigned and cannot be closed. Professionals with a pending
// expression are notified.
func (s *GigService) CloseGig(ctx context.Context, gigID, requesterID string) (*dto.GigResponse, error) {
	unlock := s.locks.lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetByID(ctx, gigID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if gig.InstitutionID != requesterID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if !models.CanTransition(gig.Status, models.GigStatusClosed) {
		return nil, apperrors.ErrInvalidGigTransition
	}

	hasAccepted, err := s.interestRepo.HasAccepted(ctx, gigID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if hasAccepted {
		return nil, apperrors.ErrGigHasAcceptedInterest
	}

	gig, err = s.gigRepo.UpdateStatus(ctx, gigID, models.GigStatusOpen, models.GigStatusClosed, nil)
	if err != nil {
		return nil, translateRepoError(err)
	}

	interests, err := s.interestRepo.ListByGig(ctx, gigID)
	if err == nil {
		payload := notificationPayload{GigID: gig.ID, GigTitle: gig.Title}
		for _, in := range interests {
			if in.Status != models.InterestStatusPending {
				continue
			}
			s.publish(ctx, in.ProfessionalID, models.NotificationGigClosed,
				"Gig closed",
				"The gig \""+gig.Title+"\" has been closed", payload)
		}
	}

	return dto.NewGigResponse(gig), nil
}

// MarkPaid records settlement confirmation arriving out of band.
func (s *GigService) MarkPaid(ctx context.Context, gigID, requesterID string) (*dto.GigResponse, error) {
	unlock := s.locks.lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetByID(ctx, gigID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if gig.InstitutionID != requesterID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if !models.CanTransition(gig.Status, models.GigStatusPaid) {
		return nil, apperrors.ErrInvalidGigTransition
	}

	gig, err = s.gigRepo.UpdateStatus(ctx, gigID, models.GigStatusAssigned, models.GigStatusPaid, gig.AssignedProfessionalID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return dto.NewGigResponse(gig), nil
}

// InitiatePayment is a pass-through to the gateway for the explicit
// initiate endpoint; the redirect reference goes back to the caller.
func (s *GigService) InitiatePayment(ctx context.Context, gigID, requesterID string) (*payments.InitiateResponse, error) {
	gig, err := s.gigRepo.GetByID(ctx, gigID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if gig.InstitutionID != requesterID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if gig.Status != models.GigStatusAssigned {
		return nil, apperrors.ErrGigNotAssigned
	}

	resp, err := s.payments.InitiatePayment(ctx, payments.InitiateRequest{
		Amount:            gig.PayAmount,
		MerchantReference: "GIG-" + gig.ID,
		Description:       gig.Title,
	})
	if err != nil {
		var appErr *apperrors.AppError
		if apperrors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.ErrPaymentProviderError.WithError(err)
	}
	return resp, nil
}

// --- helpers ---

type notificationPayload struct {
	GigID            string `json:"gig_id"`
	GigTitle         string `json:"gig_title"`
	Decision         string `json:"decision,omitempty"`
	InstitutionName  string `json:"institution_name,omitempty"`
	ProfessionalID   string `json:"professional_id,omitempty"`
	ProfessionalName string `json:"professional_name,omitempty"`
}

func (s *GigService) notifyDecision(ctx context.Context, gig *models.Gig, interest *models.JobInterest, institutionName string) {
	kind := models.NotificationInterestDeclined
	title := "Interest declined"
	message := "Your interest in \"" + gig.Title + "\" was declined"
	if interest.Status == models.InterestStatusAccepted {
		kind = models.NotificationInterestAccepted
		title = "Interest accepted"
		message = "You have been assigned to \"" + gig.Title + "\""
	}

	s.publish(ctx, interest.ProfessionalID, kind, title, message, notificationPayload{
		GigID:           gig.ID,
		GigTitle:        gig.Title,
		Decision:        string(interest.Status),
		InstitutionName: institutionName,
	})
}

func (s *GigService) publish(ctx context.Context, userID string, kind models.NotificationKind, title, message string, payload notificationPayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to marshal notification payload", err)
		return
	}

	n := &models.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
		Data:    datatypes.JSON(raw),
	}
	if err := s.dispatcher.Publish(ctx, n); err != nil {
		logger.CtxWithError(ctx, "Failed to publish notification", err,
			"user_id", userID, "kind", string(kind))
	}
}

func (s *GigService) initiatePaymentAsync(gig *models.Gig) {
	g := *gig
	go func() {
		ctx := context.Background()
		_, err := s.payments.InitiatePayment(ctx, payments.InitiateRequest{
			Amount:            g.PayAmount,
			MerchantReference: "GIG-" + g.ID,
			Description:       g.Title,
		})
		if err != nil {
			logger.Warn("Payment initiation failed", "gig_id", g.ID, "error", err.Error())
		}
	}()
}

func (s *GigService) lookupProfile(ctx context.Context, userID string) *dto.ProfessionalInfo {
	profile, err := s.profiles.Lookup(ctx, userID)
	if err != nil {
		return nil
	}
	return dto.NewProfessionalInfo(profile)
}

func (s *GigService) profileName(ctx context.Context, userID string) string {
	profile, err := s.profiles.Lookup(ctx, userID)
	if err != nil {
		return ""
	}
	return profile.Name
}

func (s *GigService) toGigResponses(gigs []models.Gig) []dto.GigResponse {
	out := make([]dto.GigResponse, 0, len(gigs))
	for i := range gigs {
		out = append(out, *dto.NewGigResponse(&gigs[i]))
	}
	return out
}

// translateRepoError maps repository sentinels onto the API error space.
func translateRepoError(err error) *apperrors.AppError {
	switch {
	case apperrors.Is(err, repositories.ErrNotFound):
		return apperrors.ErrNotFound(err)
	case apperrors.Is(err, repositories.ErrInterestExists):
		return apperrors.ErrInterestAlreadyExists
	case apperrors.Is(err, repositories.ErrInterestNotPending):
		return apperrors.ErrInterestNotPending
	case apperrors.Is(err, repositories.ErrGigAlreadyAssigned):
		return apperrors.ErrGigHasAcceptedInterest
	case apperrors.Is(err, repositories.ErrStatusConflict):
		return apperrors.ErrGigStatusConflict
	default:
		return apperrors.InternalError(err)
	}
}
