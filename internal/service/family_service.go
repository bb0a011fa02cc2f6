package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"typeb/internal/database"
	"typeb/internal/models"
	"typeb/internal/repository"
	"typeb/internal/validation"
)

var (
	ErrFamilyNotFound    = errors.New("family not found")
	ErrNotFamilyMember   = errors.New("user is not a member of this family")
	ErrNotParent         = errors.New("operation requires the parent role")
	ErrFamilyFull        = errors.New("family has reached its member limit")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrAlreadyInFamily   = errors.New("user already belongs to a family")
	ErrLastParent        = errors.New("the last parent cannot leave while other members remain")
	ErrCategoryNotFound  = errors.New("category not found")
)

// defaultCategories seeds every new family with a starter set
var defaultCategories = []models.Category{
	{Name: "Chores", Color: "#10B981", Icon: "home", SortOrder: 1},
	{Name: "Homework", Color: "#3B82F6", Icon: "book", SortOrder: 2},
	{Name: "Exercise", Color: "#F59E0B", Icon: "activity", SortOrder: 3},
	{Name: "Personal", Color: "#8B5CF6", Icon: "user", SortOrder: 4},
	{Name: "Other", Color: "#6B7280", Icon: "more-horizontal", SortOrder: 5},
}

// defaultMaxMembers caps family size unless overridden at creation
const defaultMaxMembers = 10

// FamilyService handles family and membership business logic
type FamilyService struct {
	familyRepo   *repository.FamilyRepository
	userRepo     *repository.UserRepository
	activityRepo *repository.ActivityRepository
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository, userRepo *repository.UserRepository, activityRepo *repository.ActivityRepository) *FamilyService {
	return &FamilyService{
		familyRepo:   familyRepo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
	}
}

// CreateFamily creates a family with the user as its first parent
func (s *FamilyService) CreateFamily(name string, creatorID int64) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation.ValidationError{Field: "name", Message: "family name is required"}
	}

	creator, err := s.userRepo.GetUserByID(creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if creator == nil {
		return nil, ErrUserNotFound
	}
	if creator.FamilyID != nil {
		return nil, ErrAlreadyInFamily
	}

	family, err := s.familyRepo.CreateFamily(name, creatorID, defaultMaxMembers, defaultCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	if err := s.activityRepo.Record(family.ID, creatorID, models.ActivityMemberJoined, nil, 0); err != nil {
		return nil, err
	}

	return family, nil
}

// JoinFamily adds a user to the family matching the invite code
func (s *FamilyService) JoinFamily(userID int64, inviteCode string, role models.Role) error {
	if !role.Valid() {
		return validation.ValidationError{Field: "role", Message: "role must be parent or child"}
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.FamilyID != nil {
		return ErrAlreadyInFamily
	}

	family, err := s.familyRepo.GetFamilyByInviteCode(inviteCode)
	if err != nil {
		return fmt.Errorf("failed to look up invite code: %w", err)
	}
	if family == nil {
		return ErrInvalidInviteCode
	}

	count, err := s.familyRepo.CountFamilyMembers(family.ID)
	if err != nil {
		return err
	}
	if family.MaxMembers > 0 && count >= family.MaxMembers {
		return ErrFamilyFull
	}

	tx, err := s.beginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.userRepo.SetFamily(tx, userID, &family.ID, role); err != nil {
		return err
	}
	if err := s.activityRepo.RecordTx(tx, family.ID, userID, models.ActivityMemberJoined, nil, 0); err != nil {
		return err
	}

	return tx.Commit()
}

// GetFamilyWithMembers loads a family and its roster
func (s *FamilyService) GetFamilyWithMembers(familyID int64) (*models.FamilyWithMembers, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}

	members, err := s.familyRepo.GetFamilyMembers(familyID)
	if err != nil {
		return nil, err
	}

	result := &models.FamilyWithMembers{Family: *family, Members: members}
	for _, m := range members {
		if m.Role == models.RoleParent {
			result.ParentIDs = append(result.ParentIDs, m.ID)
		} else {
			result.ChildIDs = append(result.ChildIDs, m.ID)
		}
	}

	return result, nil
}

// VerifyMember checks that a user belongs to a family
func (s *FamilyService) VerifyMember(userID, familyID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.FamilyID == nil || *user.FamilyID != familyID {
		return nil, ErrNotFamilyMember
	}
	return user, nil
}

// VerifyParent checks that a user is a parent in a family
func (s *FamilyService) VerifyParent(userID, familyID int64) (*models.User, error) {
	user, err := s.VerifyMember(userID, familyID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleParent {
		return nil, ErrNotParent
	}
	return user, nil
}

// UpdateFamily renames a family or changes its member cap (parent only)
func (s *FamilyService) UpdateFamily(actorID, familyID int64, name string, maxMembers int) (*models.Family, error) {
	if _, err := s.VerifyParent(actorID, familyID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation.ValidationError{Field: "name", Message: "family name is required"}
	}
	if maxMembers < 1 || maxMembers > 50 {
		return nil, validation.ValidationError{Field: "maxMembers", Message: "maxMembers must be between 1 and 50"}
	}

	count, err := s.familyRepo.CountFamilyMembers(familyID)
	if err != nil {
		return nil, err
	}
	if maxMembers < count {
		return nil, validation.ValidationError{Field: "maxMembers", Message: "maxMembers cannot be below the current member count"}
	}

	if err := s.familyRepo.UpdateFamily(familyID, name, maxMembers); err != nil {
		return nil, err
	}

	return s.familyRepo.GetFamilyByID(familyID)
}

// LeaveFamily detaches the user from their family. The last parent cannot
// leave while other members remain; the last member leaving deletes the
// family.
func (s *FamilyService) LeaveFamily(userID, familyID int64) error {
	user, err := s.VerifyMember(userID, familyID)
	if err != nil {
		return err
	}

	count, err := s.familyRepo.CountFamilyMembers(familyID)
	if err != nil {
		return err
	}

	if user.Role == models.RoleParent && count > 1 {
		parents, err := s.familyRepo.CountFamilyParents(familyID)
		if err != nil {
			return err
		}
		if parents <= 1 {
			return ErrLastParent
		}
	}

	tx, err := s.beginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.userRepo.SetFamily(tx, userID, nil, user.Role); err != nil {
		return err
	}
	if err := s.activityRepo.RecordTx(tx, familyID, userID, models.ActivityMemberLeft, nil, 0); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if count == 1 {
		return s.familyRepo.DeleteFamily(familyID)
	}

	return nil
}

// RemoveMember removes another member from the family (parent only)
func (s *FamilyService) RemoveMember(actorID, familyID, memberID int64) error {
	if _, err := s.VerifyParent(actorID, familyID); err != nil {
		return err
	}
	if actorID == memberID {
		return errors.New("use leave to remove yourself")
	}

	member, err := s.VerifyMember(memberID, familyID)
	if err != nil {
		return err
	}

	tx, err := s.beginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.userRepo.SetFamily(tx, memberID, nil, member.Role); err != nil {
		return err
	}
	if err := s.activityRepo.RecordTx(tx, familyID, memberID, models.ActivityMemberLeft, nil, 0); err != nil {
		return err
	}

	return tx.Commit()
}

// ChangeMemberRole switches a member between parent and child (parent only)
func (s *FamilyService) ChangeMemberRole(actorID, familyID, memberID int64, role models.Role) error {
	if _, err := s.VerifyParent(actorID, familyID); err != nil {
		return err
	}
	if !role.Valid() {
		return validation.ValidationError{Field: "role", Message: "role must be parent or child"}
	}

	member, err := s.VerifyMember(memberID, familyID)
	if err != nil {
		return err
	}
	if member.Role == role {
		return nil
	}

	if member.Role == models.RoleParent && role == models.RoleChild {
		parents, err := s.familyRepo.CountFamilyParents(familyID)
		if err != nil {
			return err
		}
		if parents <= 1 {
			return ErrLastParent
		}
	}

	tx, err := s.beginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.userRepo.SetFamily(tx, memberID, &familyID, role); err != nil {
		return err
	}

	return tx.Commit()
}

// SendInvite emails the family invite code to an address (parent only)
func (s *FamilyService) SendInvite(ctx context.Context, emailService *EmailService, actorID, familyID int64, email string) error {
	actor, err := s.VerifyParent(actorID, familyID)
	if err != nil {
		return err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return err
	}
	if family == nil {
		return ErrFamilyNotFound
	}

	if emailService == nil || !emailService.IsEnabled() {
		return errors.New("email is not configured")
	}

	return emailService.SendFamilyInviteEmail(ctx, email, actor.DisplayName, family.Name, family.InviteCode)
}

// GetCategories lists a family's task categories
func (s *FamilyService) GetCategories(userID, familyID int64) ([]models.Category, error) {
	if _, err := s.VerifyMember(userID, familyID); err != nil {
		return nil, err
	}
	return s.familyRepo.GetFamilyCategories(familyID)
}

// CreateCategory adds a category (parent only)
func (s *FamilyService) CreateCategory(actorID, familyID int64, name, color, icon string, sortOrder int) (*models.Category, error) {
	if _, err := s.VerifyParent(actorID, familyID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation.ValidationError{Field: "name", Message: "category name is required"}
	}
	return s.familyRepo.CreateCategory(familyID, name, color, icon, sortOrder)
}

// UpdateCategory edits a category (parent only)
func (s *FamilyService) UpdateCategory(actorID, familyID, categoryID int64, name, color, icon string, sortOrder int) (*models.Category, error) {
	if _, err := s.VerifyParent(actorID, familyID); err != nil {
		return nil, err
	}

	category, err := s.familyRepo.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil || category.FamilyID != familyID {
		return nil, ErrCategoryNotFound
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation.ValidationError{Field: "name", Message: "category name is required"}
	}

	if err := s.familyRepo.UpdateCategory(categoryID, name, color, icon, sortOrder); err != nil {
		return nil, err
	}
	return s.familyRepo.GetCategoryByID(categoryID)
}

// DeleteCategory removes a category (parent only)
func (s *FamilyService) DeleteCategory(actorID, familyID, categoryID int64) error {
	if _, err := s.VerifyParent(actorID, familyID); err != nil {
		return err
	}

	category, err := s.familyRepo.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil || category.FamilyID != familyID {
		return ErrCategoryNotFound
	}

	return s.familyRepo.DeleteCategory(categoryID)
}

func (s *FamilyService) beginTx() (*database.Tx, error) {
	return s.familyRepo.Begin()
}
