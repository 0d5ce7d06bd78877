// Package store persists recorded sessions into a SQLite database so runs
// survive the process and can be inspected with ordinary SQL tooling. It is
// optional; the lab works entirely in memory when no database is configured.
package store

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inductionlab/sim/internal/snapshot"
)

// Session is one recorded run.
type Session struct {
	ID        uint      `gorm:"primarykey"`
	Name      string    `gorm:"index"`
	Mode      string
	CreatedAt time.Time
}

// Measurement is one Faraday-mode tick within a session.
type Measurement struct {
	ID        uint `gorm:"primarykey"`
	SessionID uint `gorm:"index"`

	Time   float64
	DeltaT float64

	MagnetX      float64
	MagnetY      float64
	MagnetVX     float64
	MagnetVY     float64
	MagnetSpeed  float64
	DipoleMoment float64

	CoilRadius     float64
	CoilTurns      int
	CoilTilt       float64
	CoilResistance float64
	LoadResistance float64

	FieldX         float64
	FieldY         float64
	FieldMagnitude float64
	Flux           float64
	FluxRate       float64
	EMF            float64
	Current        float64

	Direction   string
	FluxTrend   string
	Explanation string
}

// SolenoidMeasurement is one solenoid-mode tick within a session.
type SolenoidMeasurement struct {
	ID        uint `gorm:"primarykey"`
	SessionID uint `gorm:"index"`

	Time            float64
	Voltage         float64
	TotalResistance float64
	Current         float64
	SolenoidLength  float64
	SolenoidTurns   int
	SolenoidRadius  float64
	TurnDensity     float64
	Polarity        int
	EndEffects      bool
	Field           float64
}

// Store wraps the SQLite database holding recorded sessions.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path must be provided")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&Session{}, &Measurement{}, &SolenoidMeasurement{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveSession persists one Faraday-mode run and returns its session ID.
func (s *Store) SaveSession(name string, measurements []snapshot.Measurement) (uint, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store not initialised")
	}
	session := Session{Name: name, Mode: "faraday", CreatedAt: time.Now().UTC()}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		if len(measurements) == 0 {
			return nil
		}
		rows := make([]Measurement, 0, len(measurements))
		for _, m := range measurements {
			rows = append(rows, Measurement{
				SessionID:      session.ID,
				Time:           m.Time,
				DeltaT:         m.DeltaT,
				MagnetX:        m.MagnetPosition.X,
				MagnetY:        m.MagnetPosition.Y,
				MagnetVX:       m.MagnetVelocity.X,
				MagnetVY:       m.MagnetVelocity.Y,
				MagnetSpeed:    m.MagnetSpeed,
				DipoleMoment:   m.DipoleMoment,
				CoilRadius:     m.CoilRadius,
				CoilTurns:      m.CoilTurns,
				CoilTilt:       m.CoilTilt,
				CoilResistance: m.CoilResistance,
				LoadResistance: m.LoadResistance,
				FieldX:         m.Field.X,
				FieldY:         m.Field.Y,
				FieldMagnitude: m.FieldMagnitude,
				Flux:           m.Flux,
				FluxRate:       m.FluxRate,
				EMF:            m.EMF,
				Current:        m.Current,
				Direction:      string(m.Direction),
				FluxTrend:      string(m.FluxTrend),
				Explanation:    m.Explanation,
			})
		}
		//1.- Batch the inserts so long runs do not issue one statement per tick.
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return 0, fmt.Errorf("save session: %w", err)
	}
	return session.ID, nil
}

// SaveSessionB persists one solenoid-mode run and returns its session ID.
func (s *Store) SaveSessionB(name string, measurements []snapshot.MeasurementB) (uint, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store not initialised")
	}
	session := Session{Name: name, Mode: "current_to_field", CreatedAt: time.Now().UTC()}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		if len(measurements) == 0 {
			return nil
		}
		rows := make([]SolenoidMeasurement, 0, len(measurements))
		for _, m := range measurements {
			rows = append(rows, SolenoidMeasurement{
				SessionID:       session.ID,
				Time:            m.Time,
				Voltage:         m.Voltage,
				TotalResistance: m.TotalResistance,
				Current:         m.Current,
				SolenoidLength:  m.SolenoidLength,
				SolenoidTurns:   m.SolenoidTurns,
				SolenoidRadius:  m.SolenoidRadius,
				TurnDensity:     m.TurnDensity,
				Polarity:        m.Polarity,
				EndEffects:      m.EndEffects,
				Field:           m.Field,
			})
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return 0, fmt.Errorf("save session: %w", err)
	}
	return session.ID, nil
}

// CountMeasurements reports how many Faraday-mode rows a session holds.
func (s *Store) CountMeasurements(sessionID uint) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store not initialised")
	}
	var count int64
	if err := s.db.Model(&Measurement{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return count, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
