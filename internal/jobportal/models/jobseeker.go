package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Skill is an entry of the shared skill catalog.
type Skill struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"size:80;not null;uniqueIndex"`
}

// JobSeekerProfile extends a JOB_SEEKER user with career details.
type JobSeekerProfile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TotalExperience int       `gorm:"index"`
	CurrentCTC      *float64
	ExpectedCTC     *float64
	CurrentLocation string            `gorm:"size:120;index"`
	NoticeStatus    *NoticePreference `gorm:"size:20"`
	NoticePeriod    *int
	LastWorkingDay  *time.Time
	ImmediateJoiner bool
	Skills          []Skill `gorm:"many2many:job_seeker_skills;"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SkillNames joins the profile's skills into a comma separated list.
func (p *JobSeekerProfile) SkillNames() string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}
