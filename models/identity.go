package models

import "math"

// Identity represents one enrolled person and their face embedding.
// It corresponds to the 'identities' table.
type Identity struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string  `gorm:"not null;size:100" json:"name"`
	EmbeddingData []byte  `gorm:"not null;column:embedding_data" json:"-"` // fixed-length float32 vector as BLOB
	PhotoPath     *string `gorm:"size:255;column:photo_path" json:"photo_path,omitempty"`
	CreatedAt     int64   `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Identity) TableName() string {
	return "identities"
}

// GetEmbedding converts the BLOB data to []float32
func (i *Identity) GetEmbedding() []float32 {
	if len(i.EmbeddingData) == 0 {
		return nil
	}

	// Convert []byte to []float32
	embedding := make([]float32, len(i.EmbeddingData)/4) // 4 bytes per float32
	for j := 0; j < len(embedding); j++ {
		offset := j * 4
		bits := uint32(i.EmbeddingData[offset]) |
			uint32(i.EmbeddingData[offset+1])<<8 |
			uint32(i.EmbeddingData[offset+2])<<16 |
			uint32(i.EmbeddingData[offset+3])<<24
		embedding[j] = math.Float32frombits(bits)
	}
	return embedding
}

// SetEmbedding converts []float32 to BLOB data
func (i *Identity) SetEmbedding(embedding []float32) {
	if len(embedding) == 0 {
		i.EmbeddingData = nil
		return
	}

	// Convert []float32 to []byte
	i.EmbeddingData = make([]byte, len(embedding)*4) // 4 bytes per float32
	for j, val := range embedding {
		offset := j * 4
		bits := math.Float32bits(val)
		i.EmbeddingData[offset] = byte(bits)
		i.EmbeddingData[offset+1] = byte(bits >> 8)
		i.EmbeddingData[offset+2] = byte(bits >> 16)
		i.EmbeddingData[offset+3] = byte(bits >> 24)
	}
}
