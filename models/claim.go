package models

import "time"

// BlockchainResult is the outcome of one claim submission.
type BlockchainResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ClaimRecord pairs an alert with what happened when it was filed on-chain.
type ClaimRecord struct {
	Alert
	Blockchain BlockchainResult `json:"blockchain"`
}

// InsuranceClaim mirrors the contract's InsuranceClaim struct.
type InsuranceClaim struct {
	ClaimID     string    `json:"claimId"`
	Claimant    string    `json:"claimant"`
	SensorType  string    `json:"sensorType"`
	SensorValue string    `json:"sensorValue"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

// TxReceipt summarizes a mined transaction.
type TxReceipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
}
