package scheduler

import (
	"log"
	"time"

	"edumarket/config"
	"edumarket/database"
	"edumarket/models"
	"edumarket/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const reminderWindow = 3 * 24 * time.Hour

// Start registers the background jobs and starts the cron runner.
func Start() *cron.Cron {
	log.Println("[SCHEDULER] Initializing scheduler...")

	c := cron.New()

	// Pending checkouts that were never paid
	c.AddFunc("*/5 * * * *", func() {
		ExpireStaleOrders(database.Database.Db, time.Now())
	})

	// Daily at 2 AM
	c.AddFunc("0 2 * * *", func() {
		log.Println("[SCHEDULER] Running daily enrollment check...")
		RunEnrollmentJobs(database.Database.Db, time.Now())
	})

	// Daily at 3 AM
	c.AddFunc("0 3 * * *", func() {
		PurgeUsedOTPs(database.Database.Db, time.Now())
	})

	c.Start()
	log.Println("[SCHEDULER] Scheduler started: order expiry every 5 minutes, enrollment checks daily at 2 AM")
	return c
}

func orderTTL() time.Duration {
	if config.AppConfig == nil || config.AppConfig.OrderTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(config.AppConfig.OrderTTLMinutes) * time.Minute
}

// ExpireStaleOrders expires pending orders older than the configured TTL.
func ExpireStaleOrders(db *gorm.DB, now time.Time) {
	n, err := services.ExpireStaleOrders(db, now.Add(-orderTTL()))
	if err != nil {
		log.Printf("[SCHEDULER] Error expiring orders: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[SCHEDULER] Expired %d stale orders", n)
	}
}

// RunEnrollmentJobs sends expiry reminders and then expires lapsed enrollments.
func RunEnrollmentJobs(db *gorm.DB, now time.Time) {
	reminded, err := services.RemindExpiringEnrollments(db, now, reminderWindow)
	if err != nil {
		log.Printf("[SCHEDULER] Error sending expiry reminders: %v", err)
	} else {
		log.Printf("[SCHEDULER] Sent %d expiry reminders", reminded)
	}

	expired, err := services.ExpireEnrollments(db, now)
	if err != nil {
		log.Printf("[SCHEDULER] Error expiring enrollments: %v", err)
		return
	}
	log.Printf("[SCHEDULER] Expired %d enrollments", expired)
}

// PurgeUsedOTPs deletes OTPs that are used or expired for more than a day.
func PurgeUsedOTPs(db *gorm.DB, now time.Time) {
	res := db.Unscoped().Where("is_used = ? OR expires_at < ?", true, now.Add(-24*time.Hour)).Delete(&models.OTP{})
	if res.Error != nil {
		log.Printf("[SCHEDULER] Error purging OTPs: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("[SCHEDULER] Purged %d OTPs", res.RowsAffected)
	}
}
