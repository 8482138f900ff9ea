package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/ironbros/aura-api/internal/models"
	"github.com/ironbros/aura-api/pkg/config"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
)

type profileReader interface {
	FindByUser(ctx context.Context, userID string) (*models.Profile, error)
}

type historyReader interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Event, error)
}

type secondaryMissionWriter interface {
	Create(ctx context.Context, mission *models.SecondaryMission) error
}

// generatedMission is the shape the model is asked to produce. Rewards are
// clamped server-side rather than trusted blindly.
type generatedMission struct {
	Nombre      string `json:"nombre" validate:"required,min=3"`
	Descripcion string `json:"descripcion" validate:"required,min=10"`
	Recompensa  int64  `json:"recompensa" validate:"required,min=1,max=1000"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GeneratorService produces personalized secondary missions by prompting a
// chat-completion model with the user's profile and recent outcomes. Model
// output is repaired, parsed and validated before it is persisted; a mission
// that never made it to storage is never handed out.
type GeneratorService struct {
	cfg       config.GeneratorConfig
	client    *http.Client
	profiles  profileReader
	history   historyReader
	store     secondaryMissionWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGeneratorService constructs the generator.
func NewGeneratorService(cfg config.GeneratorConfig, profiles profileReader, history historyReader, store secondaryMissionWriter, validate *validator.Validate, logger *zap.Logger) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorService{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		profiles:  profiles,
		history:   history,
		store:     store,
		validator: validate,
		logger:    logger,
	}
}

// Generate creates, persists and returns a new secondary mission for the user.
func (s *GeneratorService) Generate(ctx context.Context, userID string) (*models.SecondaryMission, error) {
	profile, err := s.profiles.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("profile not found for user %s", userID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile for generation")
	}

	events, err := s.history.ListByUser(ctx, userID, s.cfg.HistorySize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history for generation")
	}

	var generated *generatedMission
	if s.cfg.Stub {
		generated = s.stubMission(profile)
	} else {
		generated, err = s.requestMission(ctx, profile, events)
		if err != nil {
			return nil, err
		}
	}

	mission := &models.SecondaryMission{
		UserID:      userID,
		Nombre:      generated.Nombre,
		Descripcion: generated.Descripcion,
		Recompensa:  generated.Recompensa,
		IsActive:    true,
	}
	if err := s.store.Create(ctx, mission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist generated mission")
	}

	s.logger.Info("secondary mission generated",
		zap.String("user_id", userID),
		zap.String("mission_id", mission.ID),
		zap.Int64("recompensa", mission.Recompensa))
	return mission, nil
}

func (s *GeneratorService) requestMission(ctx context.Context, profile *models.Profile, events []models.Event) (*generatedMission, error) {
	payload, err := json.Marshal(chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(profile, events)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "the mission generator is unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "failed to read generator response")
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("generator returned an error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, appErrors.Clone(appErrors.ErrGeneration, fmt.Sprintf("the mission generator answered with status %d", resp.StatusCode))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "the generator response is not valid JSON")
	}
	if len(chat.Choices) == 0 {
		return nil, appErrors.Clone(appErrors.ErrGeneration, "the generator returned no completion")
	}

	return s.parseMission(chat.Choices[0].Message.Content)
}

// parseMission extracts the mission object from the completion text. Models
// wrap JSON in prose or markdown fences often enough that the content is
// trimmed to the outermost braces and run through a JSON repairer first.
func (s *GeneratorService) parseMission(content string) (*generatedMission, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, appErrors.Clone(appErrors.ErrGeneration, "the generator completion contains no JSON object")
	}

	repaired, err := jsonrepair.JSONRepair(content[start : end+1])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "the generator completion could not be repaired")
	}

	var mission generatedMission
	if err := json.Unmarshal([]byte(repaired), &mission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "the generator completion is not a mission object")
	}
	if err := s.validator.Struct(mission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "the generated mission failed validation")
	}
	return &mission, nil
}

func (s *GeneratorService) stubMission(profile *models.Profile) *generatedMission {
	return &generatedMission{
		Nombre:      fmt.Sprintf("Reto personal de %s", profile.Apodo),
		Descripcion: fmt.Sprintf("Completa una sesion extra esta semana para acercarte a tu objetivo: %s.", profile.Objetivo),
		Recompensa:  50,
	}
}

const systemPrompt = `Eres el generador de misiones secundarias de una aplicacion de retos entre amigos.
Responde UNICAMENTE con un objeto JSON con las claves "nombre" (string), "descripcion" (string) y "recompensa" (entero entre 1 y 1000).
No incluyas texto adicional fuera del JSON.`

func buildUserPrompt(profile *models.Profile, events []models.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Perfil del usuario:\n- Nombre: %s\n- Apodo: %s\n- Objetivo: %s\n- Aura actual: %d\n",
		profile.Name, profile.Apodo, profile.Objetivo, profile.Aura)

	if len(events) == 0 {
		b.WriteString("\nEl usuario todavia no tiene misiones resueltas.\n")
	} else {
		b.WriteString("\nUltimas misiones resueltas:\n")
		for _, e := range events {
			fmt.Fprintf(&b, "- %s (%s): %s\n", e.Name, e.Tipo, e.Status)
		}
	}

	b.WriteString("\nGenera una nueva mision secundaria personalizada que no repita las anteriores.")
	return b.String()
}
