package profile

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/services/intel"
)

// StrategicReport is the persisted strategic payload: the fresh dimension
// vector plus pressure versus peers and trajectory versus stored history.
type StrategicReport struct {
	StrategicProfile
	Pressure   map[string]PressureLevel `json:"pressure"`
	Trajectory Trajectory               `json:"trajectory"`
}

// Service runs both analyzers and persists their outputs as insights
type Service struct {
	builder     *intel.Builder
	competitors domain.CompetitorRepository
	insights    domain.InsightRepository
	logger      *zap.Logger
}

// NewService creates the profile service
func NewService(builder *intel.Builder, competitors domain.CompetitorRepository, insights domain.InsightRepository, logger *zap.Logger) *Service {
	return &Service{builder: builder, competitors: competitors, insights: insights, logger: logger}
}

// GenerateBaseline builds and stores the baseline profile
func (s *Service) GenerateBaseline(ctx context.Context, competitorID uuid.UUID) (*BaselineProfile, error) {
	raw, err := s.builder.Build(ctx, competitorID)
	if err != nil {
		return nil, err
	}
	p := BuildBaseline(raw)

	insight, err := domain.NewInsight(competitorID, domain.InsightKindBaseline, p)
	if err != nil {
		return nil, err
	}
	if err := s.insights.Insert(ctx, insight); err != nil {
		return nil, err
	}

	s.logger.Info("baseline profile generated",
		zap.String("competitor_id", competitorID.String()),
		zap.String("profile", p.Summary()),
	)
	return &p, nil
}

// GenerateStrategic scores the six dimensions, grades pressure against all
// other tracked competitors' latest vectors and derives trajectory from
// this competitor's stored history, then persists the combined report.
func (s *Service) GenerateStrategic(ctx context.Context, competitorID uuid.UUID) (*StrategicReport, error) {
	raw, err := s.builder.Build(ctx, competitorID)
	if err != nil {
		return nil, err
	}
	profile := BuildStrategic(raw)

	peers, err := s.peerVectors(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	history, err := s.vectorHistory(ctx, competitorID, 2)
	if err != nil {
		return nil, err
	}
	history = append([]DimensionVector{profile.Dimensions}, history...)

	report := StrategicReport{
		StrategicProfile: profile,
		Pressure:         Pressure(profile.Dimensions, peers),
		Trajectory:       DeriveTrajectory(history),
	}

	insight, err := domain.NewInsight(competitorID, domain.InsightKindStrategic, report)
	if err != nil {
		return nil, err
	}
	if err := s.insights.Insert(ctx, insight); err != nil {
		return nil, err
	}

	s.logger.Info("strategic dimensions generated",
		zap.String("competitor_id", competitorID.String()),
		zap.String("trajectory", string(report.Trajectory)),
	)
	return &report, nil
}

// peerVectors loads the latest stored dimension vector for every other
// competitor. Competitors without a stored strategic insight are skipped.
func (s *Service) peerVectors(ctx context.Context, selfID uuid.UUID) ([]DimensionVector, error) {
	all, err := s.competitors.List(ctx)
	if err != nil {
		return nil, err
	}

	var peers []DimensionVector
	for _, c := range all {
		if c.ID == selfID {
			continue
		}
		vectors, err := s.vectorHistory(ctx, c.ID, 1)
		if err != nil {
			return nil, err
		}
		if len(vectors) > 0 {
			peers = append(peers, vectors[0])
		}
	}
	return peers, nil
}

func (s *Service) vectorHistory(ctx context.Context, competitorID uuid.UUID, n int) ([]DimensionVector, error) {
	insights, err := s.insights.LatestByKind(ctx, competitorID, domain.InsightKindStrategic, n)
	if err != nil {
		return nil, err
	}
	var out []DimensionVector
	for _, ins := range insights {
		var report StrategicReport
		if err := json.Unmarshal(ins.Payload, &report); err != nil {
			s.logger.Warn("skipping undecodable strategic insight",
				zap.String("insight_id", ins.ID.String()), zap.Error(err))
			continue
		}
		out = append(out, report.Dimensions)
	}
	return out, nil
}
