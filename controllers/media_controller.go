package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"deptchat_server/services"
)

// MediaController hands out presigned URLs for chat image attachments.
type MediaController struct {
	Media *services.MediaService
}

// NewMediaController initializes the media controller
func NewMediaController(media *services.MediaService) *MediaController {
	return &MediaController{Media: media}
}

// HandleUploadURL - GET /api/media/upload-url?fileName=&fileType=
func (c *MediaController) HandleUploadURL(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	fileType := r.URL.Query().Get("fileType")
	if fileName == "" || fileType == "" {
		http.Error(w, `{"error": "fileName and fileType are required"}`, http.StatusBadRequest)
		return
	}

	uploadURL, key, err := c.Media.GenerateUploadURL(r.Context(), fileName, fileType)
	if err != nil {
		log.Printf("❌ Error generating upload URL: %v", err)
		http.Error(w, `{"error": "Failed to generate upload URL"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"uploadUrl": uploadURL,
		"key":       key,
	})
}

// HandleReadURL - GET /api/media/read-url?key=
func (c *MediaController) HandleReadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, `{"error": "key is required"}`, http.StatusBadRequest)
		return
	}

	readURL, err := c.Media.GenerateReadURL(r.Context(), key)
	if err != nil {
		log.Printf("❌ Error generating read URL: %v", err)
		http.Error(w, `{"error": "Failed to generate read URL"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"readUrl": readURL})
}
