package services

import (
	"encoding/json"
	"log"
	"time"

	"edumarket/models"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationInput describes a notification to store.
type NotificationInput struct {
	Type     string
	Title    string
	Message  string
	Link     string
	Metadata map[string]interface{}
}

func (in NotificationInput) build(userID uint) models.Notification {
	n := models.Notification{
		UserID:  userID,
		Type:    in.Type,
		Title:   in.Title,
		Message: in.Message,
		Link:    in.Link,
	}
	if len(in.Metadata) > 0 {
		if raw, err := json.Marshal(in.Metadata); err == nil {
			n.Metadata = datatypes.JSON(raw)
		}
	}
	return n
}

// Notify stores a notification for one user.
func Notify(db *gorm.DB, userID uint, in NotificationInput) (*models.Notification, error) {
	n := in.build(userID)
	if err := db.Create(&n).Error; err != nil {
		return nil, errors.Wrap(err, "create notification")
	}
	return &n, nil
}

// NotifyAdmins fans a notification out to every administrator.
func NotifyAdmins(db *gorm.DB, in NotificationInput) (int, error) {
	var adminIDs []uint
	if err := db.Model(&models.User{}).
		Where("role = ? AND is_deleted = ?", models.RoleAdmin, false).
		Pluck("id", &adminIDs).Error; err != nil {
		return 0, errors.Wrap(err, "list admins")
	}
	if len(adminIDs) == 0 {
		return 0, nil
	}

	batch := make([]models.Notification, 0, len(adminIDs))
	for _, id := range adminIDs {
		batch = append(batch, in.build(id))
	}
	if err := db.Create(&batch).Error; err != nil {
		return 0, errors.Wrap(err, "create admin notifications")
	}
	return len(batch), nil
}

// notifyQuietly stores a notification and only logs failures.
func notifyQuietly(db *gorm.DB, userID uint, in NotificationInput) {
	if _, err := Notify(db, userID, in); err != nil {
		log.Printf("[NOTIFY] Failed to notify user %d (%s): %v", userID, in.Type, err)
	}
}

func notifyAdminsQuietly(db *gorm.DB, in NotificationInput) {
	if _, err := NotifyAdmins(db, in); err != nil {
		log.Printf("[NOTIFY] Failed to notify admins (%s): %v", in.Type, err)
	}
}

// UnreadCount returns the number of unread notifications of a user.
func UnreadCount(db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&n).Error
	return n, err
}

// MarkNotificationRead marks one notification of userID as read.
func MarkNotificationRead(db *gorm.DB, userID, notificationID uint) (*models.Notification, error) {
	var n models.Notification
	if err := db.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Notification not found!")
		}
		return nil, errors.Wrap(err, "load notification")
	}
	if n.IsRead {
		return &n, nil
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	if err := db.Model(&n).Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		return nil, errors.Wrap(err, "mark notification read")
	}
	return &n, nil
}

// MarkAllNotificationsRead marks every unread notification of userID as read.
func MarkAllNotificationsRead(db *gorm.DB, userID uint) (int64, error) {
	res := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return res.RowsAffected, res.Error
}

// DeleteNotification removes one notification of userID.
func DeleteNotification(db *gorm.DB, userID, notificationID uint) error {
	res := db.Where("id = ? AND user_id = ?", notificationID, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete notification")
	}
	if res.RowsAffected == 0 {
		return notFound("Notification not found!")
	}
	return nil
}
