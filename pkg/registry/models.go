package registry

import (
	"time"

	"github.com/trafficreg/trafficreg/pkg/permissions"
	"github.com/trafficreg/trafficreg/pkg/snowflake"
)

// Violation categories. Stored as integers; part of the data format.
const (
	CategorySpeeding = 0
	CategoryRedLight = 1
	CategoryPavement = 2
)

// ValidCategory reports whether c is a known violation category.
func ValidCategory(c int) bool {
	return c >= CategorySpeeding && c <= CategoryPavement
}

// Table records. These map 1:1 to the base tables; list queries never read
// them directly but go through the denormalized views instead.

// UserRecord is a row of the users table. The password digest never leaves
// the store layer.
type UserRecord struct {
	ID          int64  `gorm:"primaryKey;column:id"`
	Fullname    string `gorm:"column:fullname;size:255"`
	Phone       string `gorm:"column:phone;size:15;uniqueIndex"`
	Password    string `gorm:"column:password;size:72"`
	Permissions int64  `gorm:"column:permissions"`
}

func (UserRecord) TableName() string { return "users" }

// VehicleRecord is a row of the vehicles table. The plate is the natural
// primary key.
type VehicleRecord struct {
	Plate  string `gorm:"primaryKey;column:plate;size:12"`
	UserID int64  `gorm:"column:user_id;index"`

	Owner *UserRecord `gorm:"foreignKey:UserID;references:ID"`
}

func (VehicleRecord) TableName() string { return "vehicles" }

// ViolationRecord is a row of the violations table.
type ViolationRecord struct {
	ID           int64  `gorm:"primaryKey;column:id"`
	CreatorID    int64  `gorm:"column:creator_id;index"`
	Category     int    `gorm:"column:category"`
	FineVND      int64  `gorm:"column:fine_vnd"`
	VideoURL     string `gorm:"column:video_url;size:2048"`
	VehiclePlate string `gorm:"column:vehicle_plate;size:12;index"`

	Creator *UserRecord    `gorm:"foreignKey:CreatorID;references:ID"`
	Vehicle *VehicleRecord `gorm:"foreignKey:VehiclePlate;references:Plate"`
}

func (ViolationRecord) TableName() string { return "violations" }

// RefutationRecord is a row of the refutations table. Response transitions
// once from NULL to a value and is immutable afterwards.
type RefutationRecord struct {
	ID          int64   `gorm:"primaryKey;column:id"`
	Message     string  `gorm:"column:message;size:4096"`
	Response    *string `gorm:"column:response;size:4096"`
	AuthorID    int64   `gorm:"column:author_id;index"`
	ViolationID int64   `gorm:"column:violation_id;index"`

	Author    *UserRecord      `gorm:"foreignKey:AuthorID;references:ID"`
	Violation *ViolationRecord `gorm:"foreignKey:ViolationID;references:ID"`
}

func (RefutationRecord) TableName() string { return "refutations" }

// TransactionRecord is a row of the transactions table. The unique index on
// violation_id enforces that a violation is settled at most once.
type TransactionRecord struct {
	ID          int64 `gorm:"primaryKey;column:id"`
	ViolationID int64 `gorm:"column:violation_id;uniqueIndex"`
	PayerID     int64 `gorm:"column:payer_id;index"`

	Payer     *UserRecord      `gorm:"foreignKey:PayerID;references:ID"`
	Violation *ViolationRecord `gorm:"foreignKey:ViolationID;references:ID"`
}

func (TransactionRecord) TableName() string { return "transactions" }

// DetectedRecord is a camera-flagged candidate violation awaiting triage.
type DetectedRecord struct {
	ID           int64  `gorm:"primaryKey;column:id"`
	Category     int    `gorm:"column:category"`
	VideoURL     string `gorm:"column:video_url;size:2048"`
	VehiclePlate string `gorm:"column:vehicle_plate;size:12;index"`

	Vehicle *VehicleRecord `gorm:"foreignKey:VehiclePlate;references:Plate"`
}

func (DetectedRecord) TableName() string { return "detected" }

// ConfigRecord holds persistent server configuration such as the token
// signing secret, shared by all replicas.
type ConfigRecord struct {
	Name  string `gorm:"primaryKey;column:name;size:64"`
	Value string `gorm:"column:value;size:1024"`
}

func (ConfigRecord) TableName() string { return "app_config" }

// AuditEventRecord is a best-effort trail entry for write operations.
type AuditEventRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	ActorID   int64     `gorm:"column:actor_id;index"`
	Action    string    `gorm:"column:action;size:64"`
	Target    string    `gorm:"column:target;size:128"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (AuditEventRecord) TableName() string { return "audit_events" }

// API entities. These are what the HTTP surface returns: decoded view rows
// with creation times derived from the snowflake ID and related entities
// resolved eagerly.

// User is the API representation of a user.
type User struct {
	ID              int64                  `json:"id"`
	CreatedAt       time.Time              `json:"created_at"`
	Fullname        string                 `json:"fullname"`
	Phone           string                 `json:"phone"`
	Permissions     permissions.Permission `json:"permissions"`
	VehiclesCount   int64                  `json:"vehicles_count"`
	ViolationsCount int64                  `json:"violations_count"`
}

// Vehicle is the API representation of a vehicle with its owner.
type Vehicle struct {
	Plate           string `json:"plate"`
	ViolationsCount int64  `json:"violations_count"`
	User            User   `json:"user"`
}

// Violation is the API representation of a logged violation. Creator is the
// user who logged it, not the violator; the violator is the vehicle owner.
type Violation struct {
	ID               int64     `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Creator          User      `json:"creator"`
	Category         int       `json:"category"`
	FineVND          int64     `json:"fine_vnd"`
	VideoURL         string    `json:"video_url"`
	RefutationsCount int64     `json:"refutations_count"`
	Vehicle          Vehicle   `json:"vehicle"`
}

// Refutation is a vehicle owner's contest of a violation, optionally with
// an administrative response.
type Refutation struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Message   string    `json:"message"`
	Response  *string   `json:"response"`
	Author    User      `json:"author"`
	Violation Violation `json:"violation"`
}

// Transaction is a settlement record for a violation.
type Transaction struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Violation Violation `json:"violation"`
	Payer     User      `json:"payer"`
}

// Detected is an unconfirmed camera-sourced candidate violation.
type Detected struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Category  int       `json:"category"`
	VideoURL  string    `json:"video_url"`
	Vehicle   Vehicle   `json:"vehicle"`
}

// View rows. Each struct mirrors the column set of one denormalized view;
// nested prefixes (creator_*, author_*, payer_*) are flattened here and
// reassembled into entities by the converters below.

type UserRow struct {
	UserID              int64  `gorm:"column:user_id"`
	UserFullname        string `gorm:"column:user_fullname"`
	UserPhone           string `gorm:"column:user_phone"`
	UserPermissions     int64  `gorm:"column:user_permissions"`
	UserVehiclesCount   int64  `gorm:"column:user_vehicles_count"`
	UserViolationsCount int64  `gorm:"column:user_violations_count"`
}

func (r UserRow) toUser() User {
	return User{
		ID:              r.UserID,
		CreatedAt:       snowflake.Time(r.UserID),
		Fullname:        r.UserFullname,
		Phone:           r.UserPhone,
		Permissions:     permissions.Permission(r.UserPermissions),
		VehiclesCount:   r.UserVehiclesCount,
		ViolationsCount: r.UserViolationsCount,
	}
}

type VehicleRow struct {
	VehiclePlate           string `gorm:"column:vehicle_plate"`
	VehicleViolationsCount int64  `gorm:"column:vehicle_violations_count"`
	UserRow                `gorm:"embedded"`
}

func (r VehicleRow) toVehicle() Vehicle {
	return Vehicle{
		Plate:           r.VehiclePlate,
		ViolationsCount: r.VehicleViolationsCount,
		User:            r.UserRow.toUser(),
	}
}

type ViolationRow struct {
	ViolationID               int64  `gorm:"column:violation_id"`
	ViolationCategory         int    `gorm:"column:violation_category"`
	ViolationFineVND          int64  `gorm:"column:violation_fine_vnd"`
	ViolationVideoURL         string `gorm:"column:violation_video_url"`
	ViolationRefutationsCount int64  `gorm:"column:violation_refutations_count"`

	CreatorID              int64  `gorm:"column:creator_id"`
	CreatorFullname        string `gorm:"column:creator_fullname"`
	CreatorPhone           string `gorm:"column:creator_phone"`
	CreatorPermissions     int64  `gorm:"column:creator_permissions"`
	CreatorVehiclesCount   int64  `gorm:"column:creator_vehicles_count"`
	CreatorViolationsCount int64  `gorm:"column:creator_violations_count"`

	VehicleRow `gorm:"embedded"`
}

func (r ViolationRow) toViolation() Violation {
	return Violation{
		ID:        r.ViolationID,
		CreatedAt: snowflake.Time(r.ViolationID),
		Creator: User{
			ID:              r.CreatorID,
			CreatedAt:       snowflake.Time(r.CreatorID),
			Fullname:        r.CreatorFullname,
			Phone:           r.CreatorPhone,
			Permissions:     permissions.Permission(r.CreatorPermissions),
			VehiclesCount:   r.CreatorVehiclesCount,
			ViolationsCount: r.CreatorViolationsCount,
		},
		Category:         r.ViolationCategory,
		FineVND:          r.ViolationFineVND,
		VideoURL:         r.ViolationVideoURL,
		RefutationsCount: r.ViolationRefutationsCount,
		Vehicle:          r.VehicleRow.toVehicle(),
	}
}

type refutationRow struct {
	RefutationID       int64   `gorm:"column:refutation_id"`
	RefutationMessage  string  `gorm:"column:refutation_message"`
	RefutationResponse *string `gorm:"column:refutation_response"`

	AuthorID              int64  `gorm:"column:author_id"`
	AuthorFullname        string `gorm:"column:author_fullname"`
	AuthorPhone           string `gorm:"column:author_phone"`
	AuthorPermissions     int64  `gorm:"column:author_permissions"`
	AuthorVehiclesCount   int64  `gorm:"column:author_vehicles_count"`
	AuthorViolationsCount int64  `gorm:"column:author_violations_count"`

	ViolationRow `gorm:"embedded"`
}

func (r refutationRow) toRefutation() Refutation {
	return Refutation{
		ID:        r.RefutationID,
		CreatedAt: snowflake.Time(r.RefutationID),
		Message:   r.RefutationMessage,
		Response:  r.RefutationResponse,
		Author: User{
			ID:              r.AuthorID,
			CreatedAt:       snowflake.Time(r.AuthorID),
			Fullname:        r.AuthorFullname,
			Phone:           r.AuthorPhone,
			Permissions:     permissions.Permission(r.AuthorPermissions),
			VehiclesCount:   r.AuthorVehiclesCount,
			ViolationsCount: r.AuthorViolationsCount,
		},
		Violation: r.ViolationRow.toViolation(),
	}
}

type transactionRow struct {
	TransactionID int64 `gorm:"column:transaction_id"`

	PayerID              int64  `gorm:"column:payer_id"`
	PayerFullname        string `gorm:"column:payer_fullname"`
	PayerPhone           string `gorm:"column:payer_phone"`
	PayerPermissions     int64  `gorm:"column:payer_permissions"`
	PayerVehiclesCount   int64  `gorm:"column:payer_vehicles_count"`
	PayerViolationsCount int64  `gorm:"column:payer_violations_count"`

	ViolationRow `gorm:"embedded"`
}

func (r transactionRow) toTransaction() Transaction {
	return Transaction{
		ID:        r.TransactionID,
		CreatedAt: snowflake.Time(r.TransactionID),
		Violation: r.ViolationRow.toViolation(),
		Payer: User{
			ID:              r.PayerID,
			CreatedAt:       snowflake.Time(r.PayerID),
			Fullname:        r.PayerFullname,
			Phone:           r.PayerPhone,
			Permissions:     permissions.Permission(r.PayerPermissions),
			VehiclesCount:   r.PayerVehiclesCount,
			ViolationsCount: r.PayerViolationsCount,
		},
	}
}

type detectedRow struct {
	DetectedID       int64  `gorm:"column:detected_id"`
	DetectedCategory int    `gorm:"column:detected_category"`
	DetectedVideoURL string `gorm:"column:detected_video_url"`

	VehicleRow `gorm:"embedded"`
}

func (r detectedRow) toDetected() Detected {
	return Detected{
		ID:        r.DetectedID,
		CreatedAt: snowflake.Time(r.DetectedID),
		Category:  r.DetectedCategory,
		VideoURL:  r.DetectedVideoURL,
		Vehicle:   r.VehicleRow.toVehicle(),
	}
}
