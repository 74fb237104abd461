package models

import "time"

// NoReportedHash is stored when the uploader sent no X-Image-Hash header.
const NoReportedHash = "None provided"

// ImageRecord is the metadata kept for every uploaded image.
type ImageRecord struct {
	ID             string    `json:"_id" gorm:"primaryKey;size:36"`
	ReportedHash   string    `json:"reportedHash"`
	CalculatedHash string    `json:"calculatedHash" gorm:"index"`
	IsMatch        *bool     `json:"isMatch"`
	SizeBytes      int64     `json:"sizeBytes"`
	ImagePath      string    `json:"imagePath"`
	Timestamp      time.Time `json:"timestamp" gorm:"index"`
}

func (ImageRecord) TableName() string { return "image_hashes" }

type ImageUploadResponse struct {
	Message        string `json:"message"`
	ReportedHash   string `json:"reportedHash,omitempty"`
	CalculatedHash string `json:"calculatedHash"`
	IsMatch        *bool  `json:"isMatch"`
	ImageURL       string `json:"imageUrl"`
	InsertedID     string `json:"insertedId"`
}
