// Package activity computes daily streaks and XP-based leveling for a user at
// the moment of a successful login. Functions here are pure: they take a user
// value and return the updated value; persisting it is the caller's job.
package activity

import (
	"time"

	"github.com/baharkarakas/skillstack-backend/internal/models"
)

const day = 24 * time.Hour

// XPPerLevel scales the threshold to leave a level: level*XPPerLevel.
const XPPerLevel = 100

// startOfDay truncates t to midnight UTC. All day arithmetic uses UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayDiff returns the number of calendar days between last and now.
// It is negative when last lies after now.
func DayDiff(last, now time.Time) int {
	return int(startOfDay(now).Sub(startOfDay(last)) / day)
}

// ApplyLogin updates the streak and last-active timestamp for a login at now.
//
//	same day      streak unchanged
//	next day      streak+1
//	later         streak reset to 1
//	earlier       streak unchanged (clock skew)
func ApplyLogin(u models.User, now time.Time) models.User {
	switch diff := DayDiff(u.LastActiveAt, now); {
	case diff == 1:
		u.Streak++
	case diff > 1:
		u.Streak = 1
	}
	u.LastActiveAt = now
	return u
}

// XPNeeded is the XP a user must hold to advance past level.
func XPNeeded(level int) int {
	return level * XPPerLevel
}

// CheckLevelUp grants at most one level per call and never touches XP.
func CheckLevelUp(u models.User) (models.User, bool) {
	if u.XP >= XPNeeded(u.Level) {
		u.Level++
		return u, true
	}
	return u, false
}
