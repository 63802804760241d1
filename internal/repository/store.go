package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lshigami/wellrelay/config"
	"gorm.io/gorm"
)

// ErrInvalidIdentity is returned by Store.For when a bearer token cannot be
// turned into row-level-security claims.
var ErrInvalidIdentity = errors.New("invalid caller identity")

// Repositories groups the table-scoped repositories bound to one identity.
type Repositories struct {
	Assessments     AssessmentRepository
	Questions       QuestionRepository
	UserAssessments UserAssessmentRepository
	Responses       UserAssessmentResponseRepository
	Activities      UserActivityRepository
	Journals        JournalRepository
}

// Provider hands out repositories acting as the caller identified by token,
// or as the service identity when token is empty.
type Provider interface {
	For(token string) (*Repositories, error)
}

type Store struct {
	db        *gorm.DB
	authRole  string
	jwtSecret []byte
}

func NewStore(db *gorm.DB, cfg *config.Config) *Store {
	s := &Store{db: db, authRole: cfg.Database.AuthRole}
	if cfg.Auth.JWTSecret != "" {
		s.jwtSecret = []byte(cfg.Auth.JWTSecret)
	}
	return s
}

func (s *Store) For(token string) (*Repositories, error) {
	c := conn{db: s.db}
	if token != "" {
		id, err := s.identityFromToken(token)
		if err != nil {
			return nil, err
		}
		c.identity = id
	}
	return &Repositories{
		Assessments:     &assessmentRepository{conn: c},
		Questions:       &questionRepository{conn: c},
		UserAssessments: &userAssessmentRepository{conn: c},
		Responses:       &userAssessmentResponseRepository{conn: c},
		Activities:      &userActivityRepository{conn: c},
		Journals:        &journalRepository{conn: c},
	}, nil
}

// identity is the request-scoped database role and JWT claims that row-level
// security policies read through current_setting('request.jwt.claims').
type identity struct {
	role    string
	subject string
	claims  string
}

func (s *Store) identityFromToken(token string) (*identity, error) {
	claims := jwt.MapClaims{}
	if s.jwtSecret != nil {
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
		}
	}

	sub, _ := claims.GetSubject()
	raw, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	// The role claim is only trusted once the signature has been checked.
	role := s.authRole
	if r, ok := claims["role"].(string); ok && r != "" && s.jwtSecret != nil {
		role = r
	}
	return &identity{role: role, subject: sub, claims: string(raw)}, nil
}

func (id *identity) apply(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("SELECT set_config('request.jwt.claims', ?, true)", id.claims).Error; err != nil {
		return fmt.Errorf("failed to set jwt claims: %w", err)
	}
	if err := tx.Exec("SELECT set_config('request.jwt.claim.sub', ?, true)", id.subject).Error; err != nil {
		return fmt.Errorf("failed to set jwt subject: %w", err)
	}
	if id.role != "" {
		if err := tx.Exec("SET LOCAL ROLE " + quoteIdent(id.role)).Error; err != nil {
			return fmt.Errorf("failed to switch role: %w", err)
		}
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// conn is shared by all repositories built by one Store.For call.
type conn struct {
	db       *gorm.DB
	identity *identity
}

// run executes fn with the caller's identity applied. Without an identity the
// pooled service connection is used directly; with one, fn runs inside a
// transaction so the SET LOCAL settings cannot leak to other requests.
func (c conn) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := c.db.WithContext(ctx)
	if c.identity == nil {
		return fn(db)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := c.identity.apply(tx); err != nil {
			return err
		}
		return fn(tx)
	})
}
