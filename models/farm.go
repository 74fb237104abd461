package models

import "time"

type Farm struct {
	ID            string    `json:"_id" gorm:"primaryKey;size:36"`
	Name          string    `json:"name" gorm:"index"`
	WalletAddress string    `json:"walletAddress"`
	Phone         string    `json:"phone,omitempty"`
	Location      string    `json:"locationCoordinates,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CreateFarmRequest struct {
	Name          string `json:"name" binding:"required"`
	WalletAddress string `json:"walletAddress" binding:"required"`
	Phone         string `json:"phone"`
	Location      string `json:"locationCoordinates"`
}
