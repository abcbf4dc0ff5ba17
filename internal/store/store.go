// Package store persists station histories in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/de-bkg/siteinfo/pkg/site"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Equipment kinds.
const (
	KindReceiver     = "receiver"
	KindAntenna      = "antenna"
	KindEccentricity = "eccentricity"
)

// Equipment is a receiver, antenna or eccentricity period of a station.
type Equipment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Station   string     `gorm:"size:9;not null;uniqueIndex:idx_equipment_period" json:"station"`
	Kind      string     `gorm:"size:16;not null;uniqueIndex:idx_equipment_period" json:"kind"`
	DateFrom  time.Time  `gorm:"not null;uniqueIndex:idx_equipment_period" json:"date_from"`
	DateTo    *time.Time `json:"date_to"` // nil if open
	Source    string     `gorm:"not null;uniqueIndex:idx_equipment_period" json:"source"`
	Type      string     `gorm:"type:text" json:"type"`
	Radome    string     `gorm:"size:4" json:"radome"`
	SerialNum string     `gorm:"type:text" json:"serial_num"`
	Firmware  string     `gorm:"type:text" json:"firmware"`
	System    string     `gorm:"size:3" json:"system"` // UNE or XYZ for eccentricities
	Up        float64    `json:"up"`
	North     float64    `json:"north"`
	East      float64    `json:"east"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Coordinate is a position solution of a station.
type Coordinate struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Station     string     `gorm:"size:9;not null;uniqueIndex:idx_coordinate_solution" json:"station"`
	Solution    string     `gorm:"size:4;uniqueIndex:idx_coordinate_solution" json:"solution"`
	DateFrom    time.Time  `gorm:"not null;uniqueIndex:idx_coordinate_solution" json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
	Source      string     `gorm:"not null;uniqueIndex:idx_coordinate_solution" json:"source"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Z           float64    `json:"z"`
	VX          float64    `gorm:"column:vx" json:"vx"`
	VY          float64    `gorm:"column:vy" json:"vy"`
	VZ          float64    `gorm:"column:vz" json:"vz"`
	SigmaX      float64    `json:"sigma_x"`
	SigmaY      float64    `json:"sigma_y"`
	SigmaZ      float64    `json:"sigma_z"`
	RefEpoch    *time.Time `json:"ref_epoch"`
	Approximate bool       `json:"approximate"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Store is a PostgreSQL database.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema.
func Open(dsn string) (*Store, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// AutoMigrate creates or updates the tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&Equipment{}, &Coordinate{})
}

// Close closes the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveHistory inserts the equipment and coordinates of the station, existing periods are updated.
func (s *Store) SaveHistory(ctx context.Context, h *site.InfoHistory) error {
	equipment := EquipmentRows(h)
	coords := CoordinateRows(h)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(equipment) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "station"}, {Name: "kind"}, {Name: "date_from"}, {Name: "source"}},
				DoUpdates: clause.AssignmentColumns([]string{"date_to", "type", "radome", "serial_num", "firmware", "system", "up", "north", "east", "updated_at"}),
			}).Create(&equipment).Error
			if err != nil {
				return fmt.Errorf("save equipment of %s: %w", h.Station, err)
			}
		}
		if len(coords) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "station"}, {Name: "solution"}, {Name: "date_from"}, {Name: "source"}},
				DoUpdates: clause.AssignmentColumns([]string{"date_to", "x", "y", "z", "vx", "vy", "vz", "sigma_x", "sigma_y", "sigma_z", "ref_epoch", "approximate", "updated_at"}),
			}).Create(&coords).Error
			if err != nil {
				return fmt.Errorf("save coordinates of %s: %w", h.Station, err)
			}
		}
		return nil
	})
}

// Equipment returns the equipment periods of a station ordered by kind and begin.
func (s *Store) Equipment(ctx context.Context, station string) ([]Equipment, error) {
	var rows []Equipment
	err := s.db.WithContext(ctx).
		Where("station = ?", site.StationKey(station)).
		Order("kind, date_from").
		Find(&rows).Error
	return rows, err
}

// Coordinates returns the coordinate solutions of a station ordered by begin.
func (s *Store) Coordinates(ctx context.Context, station string) ([]Coordinate, error) {
	var rows []Coordinate
	err := s.db.WithContext(ctx).
		Where("station = ?", site.StationKey(station)).
		Order("date_from, solution").
		Find(&rows).Error
	return rows, err
}

type equipmentKey struct {
	station, kind, source string
	from                  time.Time
}

type coordinateKey struct {
	station, solution, source string
	from                      time.Time
}

// uniqueRows keeps one row per key, the later one wins. A single upsert statement
// must not touch the same row twice.
func uniqueRows[T any, K comparable](rows []T, key func(T) K) []T {
	idx := make(map[K]int, len(rows))
	res := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if i, ok := idx[k]; ok {
			res[i] = row
			continue
		}
		idx[k] = len(res)
		res = append(res, row)
	}
	return res
}

// EquipmentRows converts the receiver, antenna and eccentricity histories.
// Periods with the same begin, e.g. from several SINEX solutions, are stored once.
func EquipmentRows(h *site.InfoHistory) []Equipment {
	var rows []Equipment
	for iv, recv := range h.Receivers.All() {
		rows = append(rows, Equipment{
			Station:   h.Station,
			Kind:      KindReceiver,
			DateFrom:  iv.From,
			DateTo:    timePtr(iv.To),
			Source:    recv.SourcePath,
			Type:      recv.Type,
			SerialNum: recv.SerialNum,
			Firmware:  recv.Firmware,
		})
	}
	for iv, ant := range h.Antennas.All() {
		rows = append(rows, Equipment{
			Station:   h.Station,
			Kind:      KindAntenna,
			DateFrom:  iv.From,
			DateTo:    timePtr(iv.To),
			Source:    ant.SourcePath,
			Type:      ant.Type,
			Radome:    ant.Radome,
			SerialNum: ant.SerialNum,
		})
	}
	for iv, ecc := range h.Eccentricities.All() {
		row := Equipment{
			Station:  h.Station,
			Kind:     KindEccentricity,
			DateFrom: iv.From,
			DateTo:   timePtr(iv.To),
			Source:   ecc.SourcePath,
			System:   ecc.System,
			Up:       ecc.Up,
			North:    ecc.North,
			East:     ecc.East,
		}
		if ecc.System == "XYZ" {
			// stored in the same columns, X Y Z
			row.Up, row.North, row.East = ecc.XYZ.X, ecc.XYZ.Y, ecc.XYZ.Z
		}
		rows = append(rows, row)
	}
	return uniqueRows(rows, func(e Equipment) equipmentKey {
		return equipmentKey{e.Station, e.Kind, e.Source, e.DateFrom.UTC()}
	})
}

// CoordinateRows converts the coordinate history. Solutions with the same begin,
// e.g. of several point codes, are stored once.
func CoordinateRows(h *site.InfoHistory) []Coordinate {
	var rows []Coordinate
	for iv, crd := range h.Coords.All() {
		rows = append(rows, Coordinate{
			Station:     h.Station,
			Solution:    crd.Solution,
			DateFrom:    iv.From,
			DateTo:      timePtr(iv.To),
			Source:      crd.SourcePath,
			X:           crd.Pos.X,
			Y:           crd.Pos.Y,
			Z:           crd.Pos.Z,
			VX:          crd.Vel.X,
			VY:          crd.Vel.Y,
			VZ:          crd.Vel.Z,
			SigmaX:      crd.Sigma.X,
			SigmaY:      crd.Sigma.Y,
			SigmaZ:      crd.Sigma.Z,
			RefEpoch:    timePtr(crd.RefEpoch),
			Approximate: crd.Approximate,
		})
	}
	return uniqueRows(rows, func(c Coordinate) coordinateKey {
		return coordinateKey{c.Station, c.Solution, c.Source, c.DateFrom.UTC()}
	})
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
