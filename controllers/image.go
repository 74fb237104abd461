package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/amal-sh/Blockchain-supplychain/models"
	"github.com/amal-sh/Blockchain-supplychain/services"

	"github.com/gin-gonic/gin"
)

const (
	ImageHashHeader = "X-Image-Hash"

	// MaxImageBytes caps a single upload.
	MaxImageBytes = 10 << 20

	imageUsage = "This endpoint is for uploading images via POST. To view uploaded images, navigate to http://localhost:8080/uploads/<image-hash>.jpg"
)

type ImageController struct {
	intake *services.ImageIntake
}

func NewImageController(intake *services.ImageIntake) *ImageController {
	return &ImageController{intake: intake}
}

// UploadImage stores the raw request body and verifies it against X-Image-Hash.
func (ctl *ImageController) UploadImage(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Image payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read image payload"})
		return
	}

	reportedHash := c.GetHeader(ImageHashHeader)
	record, err := ctl.intake.Upload(c.Request.Context(), data, reportedHash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ImageUploadResponse{
		Message:        "Image uploaded and hash stored successfully",
		ReportedHash:   reportedHash,
		CalculatedHash: record.CalculatedHash,
		IsMatch:        record.IsMatch,
		ImageURL:       "http://" + c.Request.Host + record.ImagePath,
		InsertedID:     record.ID,
	})
}

// UploadUsage answers GET on the upload endpoint.
func (ctl *ImageController) UploadUsage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": imageUsage})
}

// ListImages returns the newest image records.
func (ctl *ImageController) ListImages(c *gin.Context) {
	images, err := ctl.intake.Recent(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}
