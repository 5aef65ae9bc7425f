package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefrontE2E/internal/config"
	"storefrontE2E/internal/database"
	"storefrontE2E/internal/logger"
)

// RunStore - чтение истории прогонов.
type RunStore interface {
	ListRuns(ctx context.Context, limit, offset int) ([]database.SuiteRun, error)
	GetRun(ctx context.Context, id uint) (*database.SuiteRun, error)
	GetScenarios(ctx context.Context, runID uint) ([]database.ScenarioResult, error)
	GetSteps(ctx context.Context, scenarioID uint) ([]database.StepResult, error)
}

type Server struct {
	cfg   *config.Cfg
	log   *logger.Zap
	store RunStore
}

func New(cfg *config.Cfg, log *logger.Zap, store RunStore) *Server {
	return &Server{
		cfg:   cfg,
		log:   log,
		store: store,
	}
}

type scenarioView struct {
	database.ScenarioResult
	Steps []database.StepResult `json:"steps"`
}

type runView struct {
	Run       *database.SuiteRun `json:"run"`
	Scenarios []scenarioView     `json:"scenarios"`
}

// Router собирает маршруты API отчётов.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("HTTP",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Список прогонов, новые первыми
	r.GET("/api/runs", func(c *gin.Context) {
		limit, err := queryInt(c, "limit", 50)
		if err != nil || limit < 1 || limit > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad limit"})
			return
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad offset"})
			return
		}

		runs, err := s.store.ListRuns(c.Request.Context(), limit, offset)
		if err != nil {
			s.log.Error("db list runs", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})

	// Прогон со сценариями и шагами
	r.GET("/api/runs/:id", func(c *gin.Context) {
		id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
			return
		}

		view, err := s.runDetails(c.Request.Context(), uint(id64))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			s.log.Error("db get run", zap.Uint64("run_id", id64), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, view)
	})

	return r
}

func (s *Server) runDetails(ctx context.Context, id uint) (*runView, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	scenarios, err := s.store.GetScenarios(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &runView{Run: run, Scenarios: make([]scenarioView, 0, len(scenarios))}
	for _, sc := range scenarios {
		steps, err := s.store.GetSteps(ctx, sc.ID)
		if err != nil {
			return nil, err
		}
		view.Scenarios = append(view.Scenarios, scenarioView{ScenarioResult: sc, Steps: steps})
	}
	return view, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливается.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Сервер запущен", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("Остановка сервера")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
