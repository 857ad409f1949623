// Package store persists generated documents under user-chosen names.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"boxlink/internal/logger"
	"boxlink/internal/model"
	"boxlink/internal/singbox/option"
)

var (
	ErrNotFound    = errors.New("saved config not found")
	ErrInvalidName = errors.New("invalid config name")
)

// Store maps names to previously generated documents. Saving an existing
// name replaces its document.
type Store interface {
	Save(name string, doc []byte) (string, error)
	List() ([]model.SavedConfig, error)
	Load(name string) ([]byte, error)
	Delete(name string) error
}

var (
	nameIllegal = regexp.MustCompile(`[^\w\s._-]`)
	nameSpaces  = regexp.MustCompile(`\s+`)
)

// SanitizeName keeps word characters, dots, underscores and hyphens and turns
// whitespace runs into underscores.
func SanitizeName(name string) (string, error) {
	s := nameIllegal.ReplaceAllString(strings.TrimSpace(name), "")
	s = nameSpaces.ReplaceAllString(s, "_")
	if s == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return s, nil
}

// DefaultName is the suggested name for an unnamed save.
func DefaultName(t time.Time) string {
	return "Config_" + t.Format("06-01-02_15-04")
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Save stores doc under the sanitized form of name and returns that form.
func (s *GormStore) Save(name string, doc []byte) (string, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	if !json.Valid(doc) {
		return "", fmt.Errorf("document for %q is not valid json", clean)
	}

	sum := summarize(doc)
	row := model.SavedConfig{
		Name:       clean,
		Document:   string(doc),
		ProxyCount: sum.proxies,
		FinalTag:   sum.final,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "proxy_count", "final_tag", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("failed to save %q: %w", clean, err)
	}
	logger.Log.Debugf("Saved config %q (%d proxies)", clean, sum.proxies)
	return clean, nil
}

// List returns saved entries without their documents, newest first.
func (s *GormStore) List() ([]model.SavedConfig, error) {
	var rows []model.SavedConfig
	err := s.db.Select("id", "name", "proxy_count", "final_tag", "created_at", "updated_at").
		Order("updated_at desc, id desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	return rows, nil
}

// Load and Delete accept the same names Save does and sanitize them the same way.
func (s *GormStore) Load(name string) ([]byte, error) {
	name, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}
	var row model.SavedConfig
	err = s.db.Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", name, err)
	}
	return []byte(row.Document), nil
}

func (s *GormStore) Delete(name string) error {
	name, err := SanitizeName(name)
	if err != nil {
		return err
	}
	res := s.db.Where("name = ?", name).Delete(&model.SavedConfig{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

type summary struct {
	proxies int
	final   string
}

// summarize reads the listing fields out of a document; unknown shapes yield
// an empty summary.
func summarize(doc []byte) summary {
	var head struct {
		Outbounds []struct {
			Type string `json:"type"`
		} `json:"outbounds"`
		Route struct {
			Final string `json:"final"`
		} `json:"route"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return summary{}
	}
	sum := summary{final: head.Route.Final}
	for _, o := range head.Outbounds {
		switch o.Type {
		case option.TypeVLESS, option.TypeVMess, option.TypeHysteria2:
			sum.proxies++
		}
	}
	return sum
}
