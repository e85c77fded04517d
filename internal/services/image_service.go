package services

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ImageService handles image processing and storage for property photos
type ImageService struct {
	uploadDir string
}

func NewImageService(uploadDir string) *ImageService {
	// Ensure upload directory exists
	if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
		_ = os.MkdirAll(uploadDir, 0755)
	}
	return &ImageService{
		uploadDir: uploadDir,
	}
}

// ProcessAndSavePropertyPhoto saves the original photo and a listing-card
// thumbnail, returning both paths as served under /uploads
func (s *ImageService) ProcessAndSavePropertyPhoto(file multipart.File, header *multipart.FileHeader) (photoPath, thumbnailPath string, err error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", "", fmt.Errorf("formato de imagen no soportado (solo JPG/PNG)")
	}

	filename := uuid.New().String()
	photoFilename := filename + ext
	thumbFilename := filename + "_thumb" + ext

	photoRelPath := "/uploads/" + photoFilename
	thumbRelPath := "/uploads/" + thumbFilename

	// Decoding validates the upload before anything touches disk
	img, _, err := image.Decode(file)
	if err != nil {
		return "", "", fmt.Errorf("error al decodificar imagen: %w", err)
	}

	// The original is copied as uploaded, no re-encode
	if _, err := file.Seek(0, 0); err != nil {
		return "", "", fmt.Errorf("error al leer archivo: %w", err)
	}

	outPhotoPath := filepath.Join(s.uploadDir, photoFilename)
	outPhoto, err := os.Create(outPhotoPath)
	if err != nil {
		return "", "", fmt.Errorf("error al crear archivo: %w", err)
	}
	defer outPhoto.Close()

	if _, err := io.Copy(outPhoto, file); err != nil {
		return "", "", fmt.Errorf("error al guardar imagen original: %w", err)
	}

	// Listing cards want a fixed 4:3 crop
	thumbImg := imaging.Fill(img, 400, 300, imaging.Center, imaging.Lanczos)

	outThumbPath := filepath.Join(s.uploadDir, thumbFilename)
	outThumb, err := os.Create(outThumbPath)
	if err != nil {
		return "", "", fmt.Errorf("error al crear thumbnail: %w", err)
	}
	defer outThumb.Close()

	if ext == ".png" {
		err = png.Encode(outThumb, thumbImg)
	} else {
		err = jpeg.Encode(outThumb, thumbImg, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", "", fmt.Errorf("error al guardar thumbnail: %w", err)
	}

	// Timestamp query param busts stale browser caches after a re-upload
	return photoRelPath + "?t=" + fmt.Sprintf("%d", time.Now().Unix()), thumbRelPath + "?t=" + fmt.Sprintf("%d", time.Now().Unix()), nil
}
