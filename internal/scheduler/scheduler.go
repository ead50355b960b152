package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"XAUCopilot/internal/crew"
	"XAUCopilot/internal/llm"
	"XAUCopilot/internal/metrics"
	"XAUCopilot/internal/model"
	"XAUCopilot/internal/notifier"
	"XAUCopilot/internal/strategy"
	"XAUCopilot/internal/tool"
)

// Scheduler runs the copilot pipeline on a cron schedule and on demand.
// Runs never overlap.
type Scheduler struct {
	Cron     *cron.Cron
	Price    tool.Tool
	News     tool.Tool
	Analyst  llm.Analyst
	Options  crew.Options
	Notifier *notifier.TelegramNotifier // nil disables delivery
	Metrics  *metrics.Metrics
	Health   *metrics.Health
	Ctx      context.Context
	Now      func() time.Time

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, price, news tool.Tool, analyst llm.Analyst, opts crew.Options, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Price:    price,
		News:     news,
		Analyst:  analyst,
		Options:  opts,
		Notifier: tn,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// Register adds the pipeline run on the given cron spec (with seconds).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scheduledRun); err != nil {
		return fmt.Errorf("register pipeline run: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunOnce executes one pipeline run, waiting for any run in progress.
func (s *Scheduler) RunOnce(ctx context.Context) (*model.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	c := crew.NewXAUCopilot(s.Options, s.Price, s.News, s.Analyst, now)
	c.Now = s.Now
	rec, err := c.Kickoff(ctx)

	s.Metrics.ObserveRun(err)
	if s.Health != nil {
		s.Health.RecordRun(s.Now(), err)
	}
	if err != nil {
		return nil, fmt.Errorf("pipeline run: %w", err)
	}
	log.Printf("[INFO] pipeline run %s finished in %s", rec.RunID, rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond))
	return rec, nil
}

func (s *Scheduler) scheduledRun() {
	log.Println("[INFO] running scheduled pipeline")
	rec, err := s.RunOnce(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] scheduled run: %v", err)
		s.trySend(notifier.FormatError(s.Now().Format(crew.DateLayout), err))
		return
	}
	s.trySend(notifier.FormatRecommendation(rec))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	name, arg, _ := strings.Cut(command, " ")
	// Group chats append the bot name: /price@XAUCopilotBot
	name, _, _ = strings.Cut(name, "@")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/signal":
		rec, err := s.RunOnce(ctx)
		if err != nil {
			return notifier.FormatError(s.Now().Format(crew.DateLayout), err)
		}
		return notifier.FormatRecommendation(rec)
	case "/price":
		res := s.Price.Invoke(ctx, "")
		if !res.OK() || res.Table == nil {
			return notifier.FormatToolText(s.Price.Name(), res.Render())
		}
		reading, err := strategy.ReadTable(res.Table)
		if err != nil {
			return notifier.FormatPriceReport(res.Table, nil)
		}
		return notifier.FormatPriceReport(res.Table, &reading)
	case "/news":
		if arg == "" {
			arg = crew.ResearchQueries(s.Now().Format(crew.DateLayout))[0]
		}
		res := s.News.Invoke(ctx, arg)
		return notifier.FormatToolText(s.News.Name()+": "+arg, res.Render())
	default:
		return "Commands:\n/signal - run the full analysis\n/price - 4H indicator table\n/news &lt;query&gt; - past-day news search"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
