package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"gorm.io/gorm"

	"gardenia/backend/models"
	"gardenia/backend/utils"
)

// ReminderScheduler mails watering reminders once a day for plants that are
// due or overdue.
type ReminderScheduler struct {
	db     *gorm.DB
	email  *EmailService
	logger *utils.Logger
	hour   int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReminderScheduler(db *gorm.DB, email *EmailService, hour int, logger *utils.Logger) *ReminderScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &ReminderScheduler{
		db:     db,
		email:  email,
		logger: logger,
		hour:   hour,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the daily loop.
func (rs *ReminderScheduler) Start() {
	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()

		rs.logger.Info("reminder scheduler started", "hour", rs.hour)

		for {
			timer := time.NewTimer(time.Until(nextRun(time.Now(), rs.hour)))
			select {
			case <-rs.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				rs.runSweep()
			}
		}
	}()
}

// Stop shuts the loop down.
func (rs *ReminderScheduler) Stop() {
	rs.cancel()
	rs.wg.Wait()
}

// runSweep finds every reminder plant due within a day and mails its owner.
func (rs *ReminderScheduler) runSweep() {
	year, month, day := time.Now().Date()
	cutoff := time.Date(year, month, day, 0, 0, 0, 0, time.Local).AddDate(0, 0, 1)

	var plants []models.ReminderPlant
	err := rs.db.WithContext(rs.ctx).
		Where("notifications = ? AND user_email <> '' AND next_watering <= ?", true, cutoff).
		Find(&plants).Error
	if err != nil {
		rs.logger.Error("failed to load reminder plants", "error", err)
		return
	}

	for _, plant := range plants {
		subject, text := reminderMessage(plant.Name, plant.NextWatering, time.Now())
		rs.email.SendNotification(plant.UserEmail, subject, text)
	}

	rs.logger.Info("reminder sweep completed", "plants", len(plants))
}

// reminderMessage picks the urgency tier for a plant's watering reminder.
func reminderMessage(name string, nextWatering, now time.Time) (subject, text string) {
	daysUntil := int(math.Ceil(nextWatering.Sub(now).Hours() / 24))

	switch {
	case daysUntil < 0:
		subject = fmt.Sprintf("URGENT: %s needs water!", name)
		text = fmt.Sprintf("Your %s is %d days overdue for watering!", name, -daysUntil)
	case daysUntil == 0:
		subject = fmt.Sprintf("Reminder: Water your %s today", name)
		text = fmt.Sprintf("Today is the day to water your %s!", name)
	default:
		subject = fmt.Sprintf("Upcoming: %s needs water soon", name)
		text = fmt.Sprintf("Your %s will need water in %d days (%s)", name, daysUntil,
			nextWatering.Format("Mon Jan 2 2006"))
	}

	return subject, text
}

// nextRun returns the next occurrence of the configured hour.
func nextRun(now time.Time, hour int) time.Time {
	year, month, day := now.Date()
	run := time.Date(year, month, day, hour, 0, 0, 0, now.Location())
	if !run.After(now) {
		run = run.AddDate(0, 0, 1)
	}
	return run
}
