package service

import (
	"errors"
	"sort"
	"time"

	"typeb/internal/models"
	"typeb/internal/repository"
)

// ErrPremiumRequired is returned for features gated behind a premium account
var ErrPremiumRequired = errors.New("premium subscription required")

// StatsService computes streaks, leaderboards and activity summaries
type StatsService struct {
	activityRepo  *repository.ActivityRepository
	taskRepo      *repository.TaskRepository
	userRepo      *repository.UserRepository
	familyService *FamilyService
}

// NewStatsService creates a new stats service
func NewStatsService(activityRepo *repository.ActivityRepository, taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, familyService *FamilyService) *StatsService {
	return &StatsService{
		activityRepo:  activityRepo,
		taskRepo:      taskRepo,
		userRepo:      userRepo,
		familyService: familyService,
	}
}

// GetMemberStats aggregates a member's completion counts, points and streaks.
// Any family member may view any other member's stats.
func (s *StatsService) GetMemberStats(actorID, userID int64) (*models.MemberStats, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.FamilyID == nil {
		return nil, ErrUserNotFound
	}
	if _, err := s.familyService.VerifyMember(actorID, *user.FamilyID); err != nil {
		return nil, err
	}
	return s.memberStats(user)
}

// GetLeaderboard ranks family members by points earned, streak length
// breaking ties
func (s *StatsService) GetLeaderboard(actorID, familyID int64) ([]models.MemberStats, error) {
	if _, err := s.familyService.VerifyMember(actorID, familyID); err != nil {
		return nil, err
	}

	members, err := s.familyService.GetFamilyWithMembers(familyID)
	if err != nil {
		return nil, err
	}

	stats := make([]models.MemberStats, 0, len(members.Members))
	for i := range members.Members {
		ms, err := s.memberStats(&members.Members[i])
		if err != nil {
			return nil, err
		}
		stats = append(stats, *ms)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].PointsEarned != stats[j].PointsEarned {
			return stats[i].PointsEarned > stats[j].PointsEarned
		}
		return stats[i].CurrentStreak > stats[j].CurrentStreak
	})

	return stats, nil
}

// GetFamilyActivity returns the family's recent event feed
func (s *StatsService) GetFamilyActivity(actorID, familyID int64, limit int) ([]models.Activity, error) {
	if _, err := s.familyService.VerifyMember(actorID, familyID); err != nil {
		return nil, err
	}
	return s.activityRepo.GetFamilyActivity(familyID, limit)
}

// FamilySummary is the premium analytics roll-up across all members
type FamilySummary struct {
	FamilyID       int64
	Members        []models.MemberStats
	TasksCompleted int
	PointsEarned   int
}

// GetFamilySummary rolls member stats up into one family view. The actor
// must hold a premium account.
func (s *StatsService) GetFamilySummary(actorID, familyID int64) (*FamilySummary, error) {
	actor, err := s.familyService.VerifyMember(actorID, familyID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPremium {
		return nil, ErrPremiumRequired
	}

	stats, err := s.GetLeaderboard(actorID, familyID)
	if err != nil {
		return nil, err
	}

	summary := &FamilySummary{FamilyID: familyID, Members: stats}
	for _, ms := range stats {
		summary.TasksCompleted += ms.TasksCompleted
		summary.PointsEarned += ms.PointsEarned
	}
	return summary, nil
}

func (s *StatsService) memberStats(user *models.User) (*models.MemberStats, error) {
	completed, err := s.taskRepo.CountCompletedTasks(user.ID)
	if err != nil {
		return nil, err
	}
	earned, err := s.activityRepo.SumPointsEarned(user.ID)
	if err != nil {
		return nil, err
	}
	times, err := s.activityRepo.GetCompletionTimes(user.ID)
	if err != nil {
		return nil, err
	}

	current, longest := Streaks(times, user.Location(), time.Now())

	return &models.MemberStats{
		UserID:         user.ID,
		DisplayName:    user.DisplayName,
		PointsBalance:  user.PointsBalance,
		TasksCompleted: completed,
		PointsEarned:   earned,
		CurrentStreak:  current,
		LongestStreak:  longest,
	}, nil
}

// Streaks computes the current and longest run of consecutive days with at
// least one completion, evaluated in the member's timezone. The current
// streak survives until the end of today, so a gap only opens once a full
// calendar day passes with no completion.
func Streaks(completions []time.Time, loc *time.Location, now time.Time) (current, longest int) {
	if len(completions) == 0 {
		return 0, 0
	}

	days := make([]time.Time, 0, len(completions))
	seen := make(map[time.Time]bool, len(completions))
	for _, t := range completions {
		d := dayOf(t.In(loc))
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := dayOf(now.In(loc))
	last := days[len(days)-1]
	if last.Equal(today) || today.Sub(last) == 24*time.Hour {
		current = run
	}

	return current, longest
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
