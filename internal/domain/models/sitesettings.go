// internal/domain/models/sitesettings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultSiteName is used when no settings document has been saved yet.
const DefaultSiteName = "SSC Exam Tracker"

// FeatureFlags toggles the major areas of the site.
type FeatureFlags struct {
	Blogging              bool `bson:"blogging" json:"blogging"`
	ExamTracking          bool `bson:"exam_tracking" json:"exam_tracking"`
	StudyMaterials        bool `bson:"study_materials" json:"study_materials"`
	TeacherStudentConnect bool `bson:"teacher_student_connect" json:"teacher_student_connect"`
	Messaging             bool `bson:"messaging" json:"messaging"`
	Analytics             bool `bson:"analytics" json:"analytics"`
}

// SiteSettings is the single persisted settings document for the site.
// It replaces any in-memory settings state: handlers read it through the
// settings store and admins mutate it through the settings feature.
type SiteSettings struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SiteName            string             `bson:"site_name" json:"site_name"`
	SiteDescription     string             `bson:"site_description,omitempty" json:"site_description,omitempty"`
	MaintenanceMode     bool               `bson:"maintenance_mode" json:"maintenance_mode"`
	RegistrationEnabled bool               `bson:"registration_enabled" json:"registration_enabled"`
	MaxUploadSizeMB     int                `bson:"max_upload_size_mb" json:"max_upload_size_mb"`
	AllowedFileTypes    []string           `bson:"allowed_file_types,omitempty" json:"allowed_file_types,omitempty"`
	MaxUsersPerTeacher  int                `bson:"max_users_per_teacher" json:"max_users_per_teacher"`
	ExamReminderDays    int                `bson:"exam_reminder_days" json:"exam_reminder_days"`
	StudyStreakRewards  bool               `bson:"study_streak_rewards" json:"study_streak_rewards"`
	Features            FeatureFlags       `bson:"features" json:"features"`

	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
	UpdatedByUID  string    `bson:"updated_by_uid,omitempty" json:"updated_by_uid,omitempty"`
	UpdatedByName string    `bson:"updated_by_name,omitempty" json:"updated_by_name,omitempty"`
}

// DefaultSiteSettings returns the factory defaults used before an admin has
// saved anything and by the settings reset action.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteName:            DefaultSiteName,
		SiteDescription:     "Your comprehensive platform for SSC exam preparation",
		MaintenanceMode:     false,
		RegistrationEnabled: true,
		MaxUploadSizeMB:     10,
		AllowedFileTypes:    []string{"pdf", "doc", "docx", "jpg", "png"},
		MaxUsersPerTeacher:  50,
		ExamReminderDays:    3,
		StudyStreakRewards:  true,
		Features: FeatureFlags{
			Blogging:              true,
			ExamTracking:          true,
			StudyMaterials:        true,
			TeacherStudentConnect: true,
			Messaging:             true,
			Analytics:             true,
		},
	}
}
