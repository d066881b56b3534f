package service

import (
	"context"
	"errors"
	"fitbuddy/app/internal/assistant"
	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/planner"
	"fitbuddy/app/internal/repository"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrGenerationFailed = errors.New("no workout could be generated")
	ErrEmptyWorkout     = errors.New("workout data cannot be empty")
)

// WorkoutService manages saved workouts and the two ways of producing one.
type WorkoutService interface {
	GeneratePlan(ctx context.Context, ownerID primitive.ObjectID, req domain.WorkoutRequest, save bool) (domain.WorkoutPlan, *domain.Workout, error)
	GenerateWithAI(ctx context.Context, ownerID primitive.ObjectID, prompt string) (*domain.Workout, error)

	SaveWorkout(ctx context.Context, ownerID primitive.ObjectID, data string) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error)
	GetWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID, data string) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) error
}

type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	generator    assistant.CompletionProvider
	entitlements assistant.EntitlementChecker
}

// NewWorkoutService wires the store with the completion provider used by
// GenerateWithAI. A nil generator disables AI generation.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, generator assistant.CompletionProvider, entitlements assistant.EntitlementChecker) WorkoutService {
	if entitlements == nil {
		entitlements = assistant.AlwaysEntitled
	}
	return &workoutService{
		workoutRepo:  workoutRepo,
		generator:    generator,
		entitlements: entitlements,
	}
}

// GeneratePlan runs the rule-based planner and optionally stores the result.
func (s *workoutService) GeneratePlan(ctx context.Context, ownerID primitive.ObjectID, req domain.WorkoutRequest, save bool) (domain.WorkoutPlan, *domain.Workout, error) {
	plan := planner.GeneratePlan(req)
	if !save {
		return plan, nil, nil
	}
	workout, err := s.create(ctx, ownerID, plan.Text(), domain.SourcePlan)
	if err != nil {
		return plan, nil, err
	}
	return plan, workout, nil
}

// GenerateWithAI sends prompt to the completion provider and saves the reply.
func (s *workoutService) GenerateWithAI(ctx context.Context, ownerID primitive.ObjectID, prompt string) (*domain.Workout, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is empty: %w", domain.ErrInvalidInput)
	}
	if s.generator == nil {
		return nil, &domain.ProviderError{Err: errors.New("workout generation is not configured")}
	}

	ok, err := s.entitlements.Entitled(ctx, ownerID.Hex())
	if err != nil {
		return nil, fmt.Errorf("entitlement lookup: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotEntitled
	}

	payload, err := s.generator.Complete(ctx, []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}})
	if err != nil {
		log.Printf("ERROR: Workout generation for user %s failed: %v", ownerID.Hex(), err)
		var perr *domain.ProviderError
		if !errors.As(err, &perr) {
			err = &domain.ProviderError{Err: err}
		}
		return nil, err
	}

	text := strings.TrimSpace(assistant.ExtractReply(payload, []assistant.Strategy{assistant.ChatCompletionContent}))
	if text == "" || strings.Contains(strings.ToLower(text), "no workout") {
		return nil, ErrGenerationFailed
	}
	return s.create(ctx, ownerID, text, domain.SourceGenerated)
}

func (s *workoutService) SaveWorkout(ctx context.Context, ownerID primitive.ObjectID, data string) (*domain.Workout, error) {
	if strings.TrimSpace(data) == "" {
		return nil, ErrEmptyWorkout
	}
	return s.create(ctx, ownerID, data, domain.SourceManual)
}

func (s *workoutService) ListWorkouts(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	workouts, err := s.workoutRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list workouts", Err: err}
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID, ownerID)
	if err != nil {
		return nil, mapWorkoutErr("get workout", err)
	}
	return workout, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID, data string) (*domain.Workout, error) {
	if strings.TrimSpace(data) == "" {
		return nil, ErrEmptyWorkout
	}
	workout, err := s.workoutRepo.UpdateData(ctx, workoutID, ownerID, data)
	if err != nil {
		return nil, mapWorkoutErr("update workout", err)
	}
	return workout, nil
}

func (s *workoutService) DeleteWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) error {
	if err := s.workoutRepo.Delete(ctx, workoutID, ownerID); err != nil {
		return mapWorkoutErr("delete workout", err)
	}
	log.Printf("INFO: Workout %s deleted by user %s", workoutID.Hex(), ownerID.Hex())
	return nil
}

func (s *workoutService) create(ctx context.Context, ownerID primitive.ObjectID, data string, source domain.WorkoutSource) (*domain.Workout, error) {
	workout := &domain.Workout{
		OwnerID: ownerID,
		Data:    data,
		Source:  source,
	}
	id, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		log.Printf("ERROR: Saving workout for user %s failed: %v", ownerID.Hex(), err)
		return nil, &domain.PersistenceError{Op: "save workout", Err: err}
	}
	workout.ID = id
	return workout, nil
}

func mapWorkoutErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutNotFound
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
