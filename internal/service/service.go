package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"energy-service/internal/analytics"
	"energy-service/internal/metrics"
	"energy-service/internal/models"
	"energy-service/internal/publisher"
	"energy-service/internal/store"

	"go.uber.org/zap"
)

var (
	ErrOwnerRequired      = errors.New("owner id is required")
	ErrOwnerTaken         = errors.New("owner id already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCacheDisabled      = errors.New("result cache is not configured")
)

// ResultCache stores finished results for later retrieval.
type ResultCache interface {
	StoreResult(ctx context.Context, result models.AnalyticsResult) error
	GetResult(ctx context.Context, billID int64) (models.AnalyticsResult, error)
	RecentResults(ctx context.Context, ownerID string, count int64) ([]models.AnalyticsResult, error)
}

// Account is a login accepted by the service.
type Account struct {
	Username string
	Password string
	OwnerID  string
}

type Options struct {
	Repo      store.Repository
	Engine    *analytics.Engine
	Tracker   *analytics.Tracker
	Cache     ResultCache         // optional
	Publisher publisher.Publisher // optional
	Accounts  []Account
	Logger    *zap.Logger
	Now       func() time.Time
}

// Service runs the submission workflow on top of a record store.
type Service struct {
	repo      store.Repository
	engine    *analytics.Engine
	tracker   *analytics.Tracker
	cache     ResultCache
	publisher publisher.Publisher
	accounts  []Account
	logger    *zap.Logger
	now       func() time.Time

	// serializes persist-then-read so every analysis sees a consistent snapshot
	mu sync.Mutex
}

func New(opts Options) *Service {
	s := &Service{
		repo:      opts.Repo,
		engine:    opts.Engine,
		tracker:   opts.Tracker,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		accounts:  opts.Accounts,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.engine == nil {
		s.engine = analytics.NewEngine(analytics.DefaultPolicy(), nil)
	}
	if s.tracker == nil {
		s.tracker = analytics.NewTracker(0)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("service")
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Submit validates and stores a submission, then analyses it against the
// owner's history. Caching and publishing failures are logged, not returned.
func (s *Service) Submit(ctx context.Context, sub models.Submission) (models.AnalyticsResult, error) {
	ns, err := sub.Normalize()
	if err != nil {
		return models.AnalyticsResult{}, err
	}
	for i := range ns.Appliances {
		a := &ns.Appliances[i]
		a.EnergyUsageKWh = analytics.EnergyUsageKWh(a.PowerRatingWatts, a.UsageHours)
	}

	bill, readings, history, err := s.persist(ctx, ns)
	if err != nil {
		return models.AnalyticsResult{}, err
	}

	result := s.engine.Analyze(bill, readings, history)
	s.observe(result)

	if s.cache != nil {
		if err := s.cache.StoreResult(ctx, result); err != nil {
			metrics.SideEffectFailures.WithLabelValues("cache").Inc()
			s.logger.Warn("Failed to cache result", zap.Int64("bill_id", bill.ID), zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, result); err != nil {
			metrics.SideEffectFailures.WithLabelValues("publish").Inc()
			s.logger.Warn("Failed to publish result", zap.Int64("bill_id", bill.ID), zap.Error(err))
		}
	}

	return result, nil
}

func (s *Service) persist(ctx context.Context, ns models.NewSubmission) (models.BillingRecord, []models.ApplianceReading, analytics.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var history analytics.History

	bill, readings, err := s.repo.SaveSubmission(ctx, ns, s.now().UTC())
	if err != nil {
		return bill, nil, history, fmt.Errorf("saving submission: %w", err)
	}

	history.Bills, err = s.repo.HistoryFor(ctx, bill.OwnerID)
	if err != nil {
		return bill, nil, history, fmt.Errorf("loading bill history: %w", err)
	}
	history.Appliances, err = s.repo.AllApplianceReadings(ctx)
	if err != nil {
		return bill, nil, history, fmt.Errorf("loading appliance history: %w", err)
	}

	return bill, readings, history, nil
}

func (s *Service) observe(result models.AnalyticsResult) {
	rolling := s.tracker.Record(result)

	metrics.SubmissionsProcessed.Inc()
	metrics.RollingAverageBill.Set(rolling)
	if result.Predictions.PeakDemandPrediction == "Yes" {
		metrics.PeakDemandFlags.Inc()
	}

	if result.Predictions.AnomalyFlag {
		metrics.AnomaliesDetected.Inc()
		s.logger.Warn("Anomaly detected",
			zap.Int64("bill_id", result.Bill.ID),
			zap.String("owner_id", result.Bill.OwnerID),
			zap.String("period", result.Bill.PeriodLabel),
			zap.Float64("bill_amount", result.Bill.BillAmount),
		)
	}

	s.logger.Info("Submission analysed",
		zap.Int64("bill_id", result.Bill.ID),
		zap.String("owner_id", result.Bill.OwnerID),
		zap.Float64("predicted_next_bill", result.Predictions.PredictedNextBill),
		zap.Int("appliances", len(result.Appliances)),
	)
}

// Register checks that no bill has been stored under ownerID yet.
func (s *Service) Register(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return ErrOwnerRequired
	}
	taken, err := s.repo.OwnerExists(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("checking owner: %w", err)
	}
	if taken {
		return ErrOwnerTaken
	}
	return nil
}

// Login returns the owner id bound to a configured account.
func (s *Service) Login(username, password string) (string, error) {
	for _, a := range s.accounts {
		if a.Username != username {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(a.Password), []byte(password)) == 1 {
			s.logger.Info("User logged in", zap.String("username", username))
			return a.OwnerID, nil
		}
		break
	}
	return "", ErrInvalidCredentials
}

// Dashboard lists bills in recording order, for one owner or for everyone
// when ownerID is nil.
func (s *Service) Dashboard(ctx context.Context, ownerID *string) ([]models.DashboardPoint, error) {
	var (
		bills []models.BillingRecord
		err   error
	)
	if ownerID != nil {
		bills, err = s.repo.HistoryFor(ctx, *ownerID)
	} else {
		bills, err = s.repo.AllBills(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("loading bills: %w", err)
	}

	points := make([]models.DashboardPoint, 0, len(bills))
	for _, b := range bills {
		points = append(points, models.DashboardPoint{
			PeriodLabel: b.PeriodLabel,
			TotalUnits:  b.TotalUnits,
			BillAmount:  b.BillAmount,
		})
	}
	return points, nil
}

func (s *Service) Result(ctx context.Context, billID int64) (models.AnalyticsResult, error) {
	if s.cache == nil {
		return models.AnalyticsResult{}, ErrCacheDisabled
	}
	return s.cache.GetResult(ctx, billID)
}

func (s *Service) RecentResults(ctx context.Context, ownerID string, limit int64) ([]models.AnalyticsResult, error) {
	if s.cache == nil {
		return nil, ErrCacheDisabled
	}
	return s.cache.RecentResults(ctx, ownerID, limit)
}

func (s *Service) Stats() models.AnalyticsStats {
	return s.tracker.Stats()
}

func (s *Service) RecentAnomalies(limit int) []models.AnomalyEvent {
	return s.tracker.RecentAnomalies(limit)
}
