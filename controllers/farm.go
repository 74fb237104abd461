package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/chain"
	"github.com/amal-sh/Blockchain-supplychain/models"
	"github.com/amal-sh/Blockchain-supplychain/store"

	"github.com/gin-gonic/gin"
)

// ClaimReader lists the claims the contract holds for a farm wallet.
type ClaimReader interface {
	ClaimsByFarmer(ctx context.Context, farmer string) ([]models.InsuranceClaim, error)
}

type FarmController struct {
	farms  store.FarmStore
	claims ClaimReader
	logger *slog.Logger
}

// NewFarmController builds the farm handlers. claims may be nil when no contract is configured.
func NewFarmController(farms store.FarmStore, claims ClaimReader, logger *slog.Logger) *FarmController {
	if logger == nil {
		logger = slog.Default()
	}
	return &FarmController{farms: farms, claims: claims, logger: logger}
}

// CreateFarm registers a farm and its wallet (admin only).
func (ctl *FarmController) CreateFarm(c *gin.Context) {
	var req models.CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name and walletAddress are required"})
		return
	}
	if !chain.IsAddress(req.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "walletAddress must be a 0x-prefixed 20-byte hex address"})
		return
	}

	farm := &models.Farm{
		Name:          req.Name,
		WalletAddress: req.WalletAddress,
		Phone:         req.Phone,
		Location:      req.Location,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := ctl.farms.InsertFarm(c.Request.Context(), farm); err != nil {
		ctl.logger.Error("failed to create farm", "name", req.Name, "error", err)
		respondError(c, err)
		return
	}
	ctl.logger.Info("farm created", "farm_id", farm.ID, "farm_wallet", farm.WalletAddress)
	c.JSON(http.StatusCreated, farm)
}

func (ctl *FarmController) GetFarm(c *gin.Context) {
	farm, ok := ctl.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, farm)
}

// GetFarmClaims reads the farm's insurance claims straight from the contract.
func (ctl *FarmController) GetFarmClaims(c *gin.Context) {
	if ctl.claims == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Blockchain client not configured"})
		return
	}
	farm, ok := ctl.lookup(c)
	if !ok {
		return
	}
	if farm.WalletAddress == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Farm wallet address not found"})
		return
	}

	claims, err := ctl.claims.ClaimsByFarmer(c.Request.Context(), farm.WalletAddress)
	if err != nil {
		ctl.logger.Error("failed to read claims", "farm_id", farm.ID, "farm_wallet", farm.WalletAddress, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to read claims from blockchain", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, claims)
}

func (ctl *FarmController) lookup(c *gin.Context) (*models.Farm, bool) {
	farm, err := ctl.farms.FindFarm(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Farm not found"})
		return nil, false
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return farm, true
}
