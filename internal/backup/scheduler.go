// Package backup periodically writes the current transactions to disk.
package backup

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/valeriaulyamaeva/business-tracker/internal/appdata"
	"github.com/valeriaulyamaeva/business-tracker/internal/export"
)

// Source is where the scheduler reads the signed-in user's data from.
type Source interface {
	Snapshot() appdata.Snapshot
}

type Scheduler struct {
	source Source
	dir    string
	loc    *time.Location
	now    func() time.Time
	cron   *cron.Cron
}

// NewScheduler writes backups to dir with dates on loc's calendar, which also
// drives the cron schedule.
func NewScheduler(source Source, dir string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{source: source, dir: dir, loc: loc, now: time.Now, cron: cron.New(cron.WithLocation(loc))}
}

// Start schedules RunOnce with a cron spec such as "@daily" or "0 3 * * *".
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		path, err := s.RunOnce()
		if err != nil {
			log.Printf("Ошибка резервного копирования: %v", err)
			return
		}
		if path != "" {
			log.Printf("Резервная копия сохранена: %s", path)
		}
	}); err != nil {
		return fmt.Errorf("ошибка настройки CRON-задачи резервного копирования: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running backup to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce writes one CSV file and returns its path. Nothing is written while
// signed out; the path is then empty.
func (s *Scheduler) RunOnce() (string, error) {
	snap := s.source.Snapshot()
	if snap.UserID == "" {
		return "", nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога %s: %w", s.dir, err)
	}

	name := fmt.Sprintf("transactions-%s.csv", s.now().Format("20060102-150405"))
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := export.WriteCSV(f, snap.Transactions(), s.loc); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
