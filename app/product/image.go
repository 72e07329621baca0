package product

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"bitwise74/shop-api/pkg/validators"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductImage stores the multipart "image" file and points the product at it.
// The previous image, if any, is deleted afterwards.
func ProductImage(c *gin.Context, d *internal.Deps) {
	requestID := util.RequestID(c)

	if d.Images == nil {
		util.Abort(c, http.StatusServiceUnavailable, "Image storage is disabled")
		return
	}

	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var product model.Product
	if err := d.DB.WithContext(c.Request.Context()).Select("id", "image_key").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Abort(c, http.StatusNotFound, "Product not found")
			return
		}

		util.Internal(c, err, "Failed to fetch product")
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		util.Abort(c, http.StatusBadRequest, validators.ErrNoFile.Error())
		return
	}

	status, f, mime, err := validators.ImageValidator(fh, d.Config.Storage.MaxSize)
	if err != nil {
		if status == http.StatusInternalServerError {
			util.Internal(c, err, "Failed to read uploaded image")
			return
		}

		util.Abort(c, status, err.Error())
		return
	}
	defer f.Close()

	suffix, err := gonanoid.New(10)
	if err != nil {
		util.Internal(c, err, "Failed to generate image key")
		return
	}

	key := fmt.Sprintf("products/%d/%s%s", product.ID, suffix, mime.Extension())

	if err := d.Images.Put(c.Request.Context(), key, f, mime.String()); err != nil {
		util.Internal(c, err, "Failed to upload product image")
		return
	}

	err = d.DB.WithContext(c.Request.Context()).
		Model(&model.Product{}).
		Where("id = ?", product.ID).
		Update("image_key", key).
		Error
	if err != nil {
		d.RemoveImages(c.Request.Context(), []string{key})
		util.Internal(c, err, "Failed to save product image key")
		return
	}

	if product.ImageKey != nil {
		d.RemoveImages(c.Request.Context(), []string{*product.ImageKey})
	}

	zap.L().Debug("Product image replaced", zap.Uint("product_id", product.ID), zap.String("key", key), zap.String("requestID", requestID))

	c.JSON(http.StatusOK, gin.H{
		"status":    true,
		"image_key": key,
	})
}
