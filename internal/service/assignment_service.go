package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironbros/aura-api/internal/models"
	"github.com/ironbros/aura-api/internal/repository"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
)

// firstMissionID is where every new assignment starts its main story.
const firstMissionID = "1"

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByPerson(ctx context.Context, personID string) (*models.Assignment, error)
	FindSlot(ctx context.Context, personID string, slotType models.SlotType) (*models.MissionSlot, error)
	ReplaceSlot(ctx context.Context, slot *models.MissionSlot) error
	UpdateSlotParams(ctx context.Context, personID string, slotType models.SlotType, params models.SlotParams) (int64, error)
	AppendVote(ctx context.Context, personID string, slotType models.SlotType, voterID string, like bool, maxVoters int) (*models.MissionSlot, error)
	ResolveSlot(ctx context.Context, params models.SlotResolution) error
}

type missionCatalog interface {
	FindByID(ctx context.Context, id string) (*models.Mission, error)
}

type secondaryMissionStore interface {
	FindByID(ctx context.Context, id string) (*models.SecondaryMission, error)
}

type missionGenerator interface {
	Generate(ctx context.Context, userID string) (*models.SecondaryMission, error)
}

// AssignmentService owns the lifecycle of a user's mission slots: creation,
// progression, partial updates and the group voting state machine.
type AssignmentService struct {
	repo      assignmentRepository
	catalog   missionCatalog
	secondary secondaryMissionStore
	generator missionGenerator
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// WithMetrics attaches the resolution counters. Optional; a nil recorder is a
// no-op.
func (s *AssignmentService) WithMetrics(m *MetricsService) *AssignmentService {
	s.metrics = m
	return s
}

// NewAssignmentService constructs the assignment engine.
func NewAssignmentService(repo assignmentRepository, catalog missionCatalog, secondary secondaryMissionStore, generator missionGenerator, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:      repo,
		catalog:   catalog,
		secondary: secondary,
		generator: generator,
		validator: validate,
		logger:    logger,
	}
}

// Create allocates the assignment for a user with the first catalog mission in
// the main slot. Rejected with Conflict when the user already has one, since
// assignments are strictly 1:1 with users.
func (s *AssignmentService) Create(ctx context.Context, personID, personName string) (*models.Assignment, error) {
	first, err := s.catalog.FindByID(ctx, firstMissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mission catalog is not seeded")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load first mission")
	}

	assignment := &models.Assignment{
		PersonID:   personID,
		PersonName: personName,
		Mission: &models.MissionSlot{
			PersonID:     personID,
			SlotType:     models.SlotMain,
			MissionID:    first.ID,
			MissionName:  first.Nombre,
			Status:       models.StatusActive,
			CreationDate: time.Now().UTC(),
		},
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("an assignment already exists for user %s", personID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to insert assignment")
	}

	s.logger.Info("assignment created", zap.String("person_id", personID))
	return assignment, nil
}

// Get returns the assignment for a user.
func (s *AssignmentService) Get(ctx context.Context, personID string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByPerson(ctx, personID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no assignments were found for user %s", personID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// GetMissions joins the populated slots against the catalog and secondary
// store and returns the full mission records. A populated slot whose
// referenced record is missing is an error, not a silent null.
func (s *AssignmentService) GetMissions(ctx context.Context, personID string) (*models.AssignmentMissions, error) {
	assignment, err := s.Get(ctx, personID)
	if err != nil {
		return nil, err
	}

	out := &models.AssignmentMissions{}
	if assignment.Mission != nil {
		mission, err := s.catalog.FindByID(ctx, assignment.Mission.MissionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("mission %s not found in catalog", assignment.Mission.MissionID))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mission detail")
		}
		out.Mission = mission
	}
	if assignment.SecondaryMission != nil {
		mission, err := s.lookupSecondary(ctx, assignment.SecondaryMission.MissionID)
		if err != nil {
			return nil, err
		}
		out.SecondaryMission = mission
	}
	if assignment.GroupMission != nil {
		mission, err := s.lookupSecondary(ctx, assignment.GroupMission.MissionID)
		if err != nil {
			return nil, err
		}
		out.GroupMission = mission
	}
	return out, nil
}

func (s *AssignmentService) lookupSecondary(ctx context.Context, missionID string) (*models.SecondaryMission, error) {
	mission, err := s.secondary.FindByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("secondary mission %s not found", missionID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load secondary mission detail")
	}
	return mission, nil
}

// ReplaceSlot swaps the mission held in a slot: the main slot advances to the
// next catalog entry, the secondary slot gets a freshly generated mission.
// The previous round state (voters, tallies, result) is discarded entirely.
func (s *AssignmentService) ReplaceSlot(ctx context.Context, personID string, slotType models.SlotType) (*models.Assignment, error) {
	if slotType != models.SlotMain && slotType != models.SlotSecondary {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slot %s cannot be replaced", slotType))
	}

	assignment, err := s.Get(ctx, personID)
	if err != nil {
		return nil, err
	}

	slot := &models.MissionSlot{
		PersonID:     personID,
		SlotType:     slotType,
		Status:       models.StatusActive,
		CreationDate: time.Now().UTC(),
	}

	switch slotType {
	case models.SlotMain:
		next, err := s.nextMainMission(ctx, assignment)
		if err != nil {
			return nil, err
		}
		slot.MissionID = next.ID
		slot.MissionName = next.Nombre
	case models.SlotSecondary:
		generated, err := s.generator.Generate(ctx, personID)
		if err != nil {
			return nil, err
		}
		slot.MissionID = generated.ID
		slot.MissionName = generated.Nombre
	}

	if err := s.repo.ReplaceSlot(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to replace mission slot")
	}

	s.logger.Info("mission slot replaced",
		zap.String("person_id", personID),
		zap.String("slot", string(slotType)),
		zap.String("mission_id", slot.MissionID))
	return s.Get(ctx, personID)
}

func (s *AssignmentService) nextMainMission(ctx context.Context, assignment *models.Assignment) (*models.Mission, error) {
	current := assignment.Mission
	if current == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "the main mission slot is empty")
	}
	currentID, err := strconv.Atoi(current.MissionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("mission id %q is not sequential", current.MissionID))
	}
	next, err := s.catalog.FindByID(ctx, strconv.Itoa(currentID+1))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "the following main mission was not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load next mission")
	}
	return next, nil
}

// UpdateSlotParamsRequest is the payload for a targeted partial slot update.
type UpdateSlotParamsRequest struct {
	MissionType models.SlotType `json:"mission_type" validate:"required"`
	Status      *string         `json:"status"`
	Result      *string         `json:"result"`
	Like        *int            `json:"like" validate:"omitempty,min=0"`
	Dislike     *int            `json:"dislike" validate:"omitempty,min=0"`
}

// UpdateSlotParams updates status/result/like/dislike on a populated slot.
// Absent fields are left untouched.
func (s *AssignmentService) UpdateSlotParams(ctx context.Context, personID string, req UpdateSlotParamsRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot update payload")
	}
	if !req.MissionType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown mission type %q", req.MissionType))
	}

	params := models.SlotParams{Result: req.Result, Like: req.Like, Dislike: req.Dislike}
	if req.Status != nil {
		status := models.MissionStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown mission status %q", *req.Status))
		}
		params.Status = &status
	}
	if !params.HasUpdates() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no valid parameters were provided for the update")
	}

	assignment, err := s.Get(ctx, personID)
	if err != nil {
		return nil, err
	}
	if assignment.Slot(req.MissionType) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("the %s cannot be updated because it does not exist", req.MissionType))
	}

	rows, err := s.repo.UpdateSlotParams(ctx, personID, req.MissionType, params)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update slot parameters")
	}
	if rows == 0 {
		return assignment, nil
	}
	return s.Get(ctx, personID)
}

// VoteRequest is the payload for casting a vote against a mission slot.
type VoteRequest struct {
	MissionType models.SlotType `json:"mission_type" validate:"required"`
	Like        bool            `json:"like"`
	GroupSize   int             `json:"group_size" validate:"required,min=1"`
}

// CastVote records one vote on the current round of a slot and, when the vote
// is decisive, resolves the round: terminal status, history event and signed
// aura reward are committed as a single unit. The round needs groupSize-1
// votes from others; the owner's implicit stake is not a cast vote. A round
// left full-but-unresolved by an earlier mid-resolution failure is resumed
// from the existing tallies, but a voter arriving after the round filled is
// rejected with VotingFull, never silently dropped.
func (s *AssignmentService) CastVote(ctx context.Context, personID, voterID string, req VoteRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vote payload")
	}
	if !req.MissionType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown mission type %q", req.MissionType))
	}

	assignment, err := s.Get(ctx, personID)
	if err != nil {
		return nil, err
	}
	slot := assignment.Slot(req.MissionType)
	if slot == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("cannot vote on %s because it does not exist", req.MissionType))
	}

	votesNeeded := req.GroupSize - 1

	if slot.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrVotingFull, "the voting round is already resolved")
	}

	if votesNeeded == 0 {
		// Solo group: no other member exists to vote, so this call decides
		// the round directly from its own like flag.
		if req.Like {
			slot.Like++
		} else {
			slot.Dislike++
		}
		if err := s.resolve(ctx, personID, slot); err != nil {
			if errors.Is(err, repository.ErrAlreadyResolved) {
				return nil, appErrors.Clone(appErrors.ErrVotingFull, "the voting round is already resolved")
			}
			return nil, err
		}
		return s.Get(ctx, personID)
	}

	if len(slot.Voters) >= votesNeeded {
		// The round already holds every needed vote, so an earlier resolution
		// attempt must have failed mid-flight. Resume it from the existing
		// tallies; this call's vote is never counted, so only a voter already
		// in the round (the decisive caller retrying) sees success.
		if err := s.resolve(ctx, personID, slot); err != nil && !errors.Is(err, repository.ErrAlreadyResolved) {
			return nil, err
		}
		if slot.HasVoter(voterID) {
			return s.Get(ctx, personID)
		}
		return nil, appErrors.Clone(appErrors.ErrVotingFull, "the voting is full")
	}

	if slot.HasVoter(voterID) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("the user %s has already voted", voterID))
	}

	updated, err := s.repo.AppendVote(ctx, personID, req.MissionType, voterID, req.Like, votesNeeded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.retryRejectedVote(ctx, personID, voterID, req, votesNeeded)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to record vote")
	}

	if len(updated.Voters) >= votesNeeded {
		if err := s.resolve(ctx, personID, updated); err != nil && !errors.Is(err, repository.ErrAlreadyResolved) {
			return nil, err
		}
	}
	return s.Get(ctx, personID)
}

// retryRejectedVote re-reads the slot after the conditional append matched no
// row, to report the precise reason (or to resume a round another request
// filled in the meantime).
func (s *AssignmentService) retryRejectedVote(ctx context.Context, personID, voterID string, req VoteRequest, votesNeeded int) (*models.Assignment, error) {
	slot, err := s.repo.FindSlot(ctx, personID, req.MissionType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("cannot vote on %s because it does not exist", req.MissionType))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload slot after vote")
	}

	switch {
	case slot.Status.Terminal():
		return nil, appErrors.Clone(appErrors.ErrVotingFull, "the voting round is already resolved")
	case slot.HasVoter(voterID):
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("the user %s has already voted", voterID))
	case len(slot.Voters) >= votesNeeded:
		if err := s.resolve(ctx, personID, slot); err != nil && !errors.Is(err, repository.ErrAlreadyResolved) {
			return nil, err
		}
		return nil, appErrors.Clone(appErrors.ErrVotingFull, "the voting is full")
	default:
		return nil, appErrors.Clone(appErrors.ErrPersistence, "the vote could not be recorded")
	}
}

// resolve computes the round outcome (ties favor completion), archives the
// event and applies the signed reward. The repository commits all three
// writes transactionally; a concurrent resolution surfaces as
// repository.ErrAlreadyResolved.
func (s *AssignmentService) resolve(ctx context.Context, personID string, slot *models.MissionSlot) error {
	outcome := models.StatusCompleted
	if slot.Like < slot.Dislike {
		outcome = models.StatusFailed
	}

	var (
		reward    int64
		logroName *string
	)
	if slot.SlotType == models.SlotMain {
		mission, err := s.catalog.FindByID(ctx, slot.MissionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("mission details not found for mission %s", slot.MissionID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mission for resolution")
		}
		reward = mission.Recompensa
		if mission.Logro != nil {
			logroName = &mission.Logro.Nombre
		}
	} else {
		mission, err := s.lookupSecondary(ctx, slot.MissionID)
		if err != nil {
			return err
		}
		reward = mission.Recompensa
	}

	if outcome == models.StatusFailed {
		reward = -reward
	}

	event := &models.Event{
		ID:        uuid.NewString(),
		UserID:    personID,
		MissionID: slot.MissionID,
		Name:      slot.MissionName,
		Tipo:      slot.SlotType,
		Result:    slot.Result,
		Status:    outcome,
		Created:   time.Now().UTC(),
		LogroName: logroName,
	}

	err := s.repo.ResolveSlot(ctx, models.SlotResolution{
		PersonID:  personID,
		SlotType:  slot.SlotType,
		Status:    outcome,
		Event:     event,
		AuraDelta: reward,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return err
		}
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("profile not found for user %s", personID))
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit mission resolution")
	}

	s.metrics.RecordResolution(slot.SlotType, outcome)
	s.logger.Info("mission resolved",
		zap.String("person_id", personID),
		zap.String("slot", string(slot.SlotType)),
		zap.String("mission_id", slot.MissionID),
		zap.String("status", string(outcome)),
		zap.Int64("aura_delta", reward))
	return nil
}
