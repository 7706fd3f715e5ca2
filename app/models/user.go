package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	STATUS_ACTIVE   = "active"
	STATUS_DISABLED = "disabled"

	// MinPasswordLength matches the min=6 rules on passwordInput and the forms.
	MinPasswordLength = 6
)

type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Email       string     `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password    string     `gorm:"type:text" json:"-" validate:"required,min=6"`
	Status      string     `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active disabled"`
	LastLoginAt *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

var validate = validator.New()

// passwordInput checks a plain password before it is hashed.
type passwordInput struct {
	Password string `validate:"required,min=6"`
}

func (u *User) Validate() error {
	return validate.Struct(u)
}

// CreateUser returns an active, not yet stored account.
func CreateUser(email, password string) (*User, error) {
	u := &User{Email: NormalizeEmail(email), Status: STATUS_ACTIVE}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// SetPassword rejects passwords shorter than MinPasswordLength.
func (u *User) SetPassword(password string) error {
	if err := validate.Struct(passwordInput{Password: password}); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// PasswordStamp changes whenever the password changes. Reset tokens carry it
// so a token stops working once it has been used.
func (u *User) PasswordStamp() string {
	sum := sha256.Sum256([]byte(u.Password))
	return hex.EncodeToString(sum[:8])
}

// CreatedIn returns the account creation time in loc.
func (u *User) CreatedIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return u.CreatedAt.In(loc)
}
