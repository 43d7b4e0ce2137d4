package matcher

import (
	"fmt"

	"campusmatch/backend/internal/models"
	"campusmatch/backend/internal/store"

	"gorm.io/gorm"
)

const maxPageSize = 100

// Filters narrows the candidate pool. Zero values mean "no filter".
type Filters struct {
	ActivityID *uint
	University string
	Major      string
	Heritage   []string
	SortBy     string // name (default), university, class_year
	SortOrder  string // asc (default), desc
}

// Candidate is a matched user plus the activity annotations for display.
// Skill, equipment and transport come from the user's preference for the
// filtered activity; users without one are annotated with zero values, never
// filtered out.
type Candidate struct {
	ID           uint              `json:"id"`
	Nickname     string            `json:"nickname"`
	University   string            `json:"university,omitempty"`
	Major        string            `json:"major,omitempty"`
	ClassYear    int               `json:"class_year,omitempty"`
	Heritage     []string          `json:"heritage,omitempty"`
	SkillLevel   models.SkillLevel `json:"skill_level,omitempty"`
	HasEquipment bool              `json:"has_equipment"`
	HasTransport bool              `json:"has_transport"`
}

// Page is one window of the deterministically ordered candidate list.
type Page struct {
	Candidates []Candidate `json:"candidates"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int64       `json:"total_count"`
	HasNext    bool        `json:"has_next"`
}

// Service runs the candidate-matching query. It reads users and preferences
// directly and consults the relationship store for the exclusion step; it
// never writes.
type Service struct {
	db    *gorm.DB
	store store.RelationshipStore
}

// NewService creates a new matcher Service.
func NewService(db *gorm.DB, st store.RelationshipStore) *Service {
	return &Service{db: db, store: st}
}

// FindCandidates returns the requested page of users eligible for a new
// request from the requester. Excluded are the requester themselves and
// anyone they hold a pending, accepted or blocked connection with; declined
// users stay discoverable. The full result set is ordered before paging, so
// repeated calls with unchanged data produce pages with no duplicates and no
// gaps for any page size.
func (s *Service) FindCandidates(requesterID uint, filters Filters, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	excluded, err := s.store.RelatedPartnerIDs(requesterID, models.KindConnection, []models.RelationshipStatus{
		models.StatusPending,
		models.StatusAccepted,
		models.StatusBlocked,
	})
	if err != nil {
		return nil, err
	}

	query := s.db.Model(&models.User{}).Where("id <> ?", requesterID)
	if len(excluded) > 0 {
		query = query.Where("id NOT IN ?", excluded)
	}
	if filters.University != "" {
		query = query.Where("university = ?", filters.University)
	}
	if filters.Major != "" {
		query = query.Where("major = ?", filters.Major)
	}
	if filters.ActivityID != nil {
		query = query.
			Where("open_to_all_activities = ? OR id IN (?)", true,
				s.db.Model(&models.ActivityPreference{}).Select("user_id").Where("activity_id = ?", *filters.ActivityID)).
			Preload("Preferences", "activity_id = ?", *filters.ActivityID)
	}

	var users []models.User
	err = query.Order(orderClause(filters.SortBy, filters.SortOrder)).Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}

	if len(filters.Heritage) > 0 {
		users = filterByHeritage(users, filters.Heritage)
	}

	totalCount := int64(len(users))
	start := (page - 1) * pageSize
	if start > len(users) {
		start = len(users)
	}
	end := start + pageSize
	if end > len(users) {
		end = len(users)
	}

	candidates := make([]Candidate, 0, end-start)
	for _, user := range users[start:end] {
		candidates = append(candidates, newCandidate(user))
	}

	return &Page{
		Candidates: candidates,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		HasNext:    int64(end) < totalCount,
	}, nil
}

// orderClause builds the ORDER BY from a whitelist; unknown values fall back
// to the default so user input never reaches the SQL directly.
func orderClause(sortBy, sortOrder string) string {
	column := "nickname"
	switch sortBy {
	case "university":
		column = "university"
	case "class_year":
		column = "class_year"
	}

	direction := "ASC"
	if sortOrder == "desc" {
		direction = "DESC"
	}

	return column + " " + direction
}

func filterByHeritage(users []models.User, heritage []string) []models.User {
	wanted := make(map[string]bool, len(heritage))
	for _, h := range heritage {
		wanted[h] = true
	}

	filtered := users[:0]
	for _, user := range users {
		for _, h := range user.Heritage {
			if wanted[h] {
				filtered = append(filtered, user)
				break
			}
		}
	}
	return filtered
}

func newCandidate(user models.User) Candidate {
	candidate := Candidate{
		ID:         user.ID,
		Nickname:   user.Nickname,
		University: user.University,
		Major:      user.Major,
		ClassYear:  user.ClassYear,
		Heritage:   user.Heritage,
	}
	if len(user.Preferences) > 0 {
		pref := user.Preferences[0]
		candidate.SkillLevel = pref.SkillLevel
		candidate.HasEquipment = pref.HasEquipment
		candidate.HasTransport = pref.HasTransport
	}
	return candidate
}
