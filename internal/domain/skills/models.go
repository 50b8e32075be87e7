package skills

import "time"

type Requirement struct {
	SkillID   string `json:"skillId"`
	SkillName string `json:"skillName"`
	Category  string `json:"category"`
	Required  Rating `json:"requiredRating"`
}

// SkillGap is a derived view of one skill for one employee. It is computed
// on demand and never persisted.
type SkillGap struct {
	SkillID        string    `json:"skillId"`
	SkillName      string    `json:"skillName"`
	Category       string    `json:"category"`
	CurrentRating  Rating    `json:"currentRating,omitempty"`
	RequiredRating Rating    `json:"requiredRating"`
	Gap            int       `json:"gap"`
	Status         GapStatus `json:"status"`
}

type BandAnalysis struct {
	BandID        string     `json:"bandId,omitempty"`
	BandName      string     `json:"bandName,omitempty"`
	TotalSkills   int        `json:"totalSkills"`
	SkillsBelow   int        `json:"skillsBelowRequirement"`
	SkillsAt      int        `json:"skillsAtRequirement"`
	SkillsAbove   int        `json:"skillsAboveRequirement"`
	AverageRating float64    `json:"averageRating"`
	Gaps          []SkillGap `json:"skillGaps"`
}

type Coverage struct {
	Covered  int     `json:"covered"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
	Percent  int     `json:"percent"`
	Color    string  `json:"color"`
}

type CategorySummary struct {
	Category string   `json:"category"`
	Coverage Coverage `json:"coverage"`
	Below    int      `json:"below"`
	At       int      `json:"at"`
	Above    int      `json:"above"`
}

type EmployeeSkill struct {
	SkillID    string    `json:"skillId"`
	SkillName  string    `json:"skillName"`
	Category   string    `json:"category"`
	Rating     Rating    `json:"rating"`
	AssessedAt time.Time `json:"assessedAt"`
}

type CatalogSkill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}
