package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/holox/posinput/internal/registry"
	"github.com/holox/posinput/internal/usb"
)

// DeviceSummary is the wire representation of one registered device.
type DeviceSummary struct {
	DeviceName       string           `json:"deviceName"`
	VendorID         uint16           `json:"vendorId"`
	ProductID        uint16           `json:"productId"`
	ProductName      string           `json:"productName,omitempty"`
	ManufacturerName string           `json:"manufacturerName,omitempty"`
	DeviceType       usb.DeviceType   `json:"deviceType"`
	Confidence       float64          `json:"confidence"`
	KeyboardKind     usb.KeyboardKind `json:"keyboardKind,omitempty"`
	Permission       string           `json:"permission"`
	HasPermission    bool             `json:"hasPermission"`
	LastSeen         string           `json:"lastSeen"`
}

// summarise flattens a registry entry for API consumers.
func summarise(entry registry.Entry) DeviceSummary {
	s := DeviceSummary{
		DeviceName:       entry.Descriptor.DeviceName,
		VendorID:         entry.Descriptor.VendorID,
		ProductID:        entry.Descriptor.ProductID,
		ProductName:      entry.Descriptor.ProductName,
		ManufacturerName: entry.Descriptor.ManufacturerName,
		DeviceType:       entry.Classification.Type,
		Confidence:       entry.Classification.Confidence,
		Permission:       string(entry.Permission),
		HasPermission:    entry.Permission == registry.PermissionGranted,
		LastSeen:         entry.LastSeen.UTC().Format(time.RFC3339),
	}
	if s.DeviceType == usb.TypeKeyboard {
		s.KeyboardKind = usb.KeyboardKindOf(entry.Descriptor)
	}
	return s
}

// handleListDevices returns all registered devices, with an optional
// classification filter.
//
// Query parameters:
//   - type: filter by classified type (scanner, keyboard, ...)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	entries := s.registry.Snapshot()

	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		if !validDeviceType(typeStr) {
			writeInvalidArgument(w, "unknown device type: "+typeStr)
			return
		}
		filtered := entries[:0]
		for _, entry := range entries {
			if entry.Classification.Type == usb.DeviceType(typeStr) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	devices := make([]DeviceSummary, 0, len(entries))
	for _, entry := range entries {
		devices = append(devices, summarise(entry))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetKeyboard reports the current keyboard device, if any. Tills
// use this to decide whether manual entry is possible at all.
func (s *Server) handleGetKeyboard(w http.ResponseWriter, _ *http.Request) {
	entry, ok := s.registry.FirstKeyboard()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"connected": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"connected": true,
		"device":    summarise(entry),
	})
}

// PermissionRequestBody is the payload for POST /permissions/request.
type PermissionRequestBody struct {
	DeviceName string `json:"deviceName"`
}

// handlePermissionRequest triggers the host permission prompt for a
// device. The response only confirms delivery; the decision arrives
// later as a permission_result event.
func (s *Server) handlePermissionRequest(w http.ResponseWriter, r *http.Request) {
	var body PermissionRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeInvalidArgument(w, "invalid JSON body")
		return
	}
	if body.DeviceName == "" {
		writeInvalidArgument(w, "deviceName field is required")
		return
	}

	outcome, err := s.registry.RequestPermission(r.Context(), body.DeviceName)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrDeviceNotFound):
			writeDeviceNotFound(w, "device not found")
		case errors.Is(err, registry.ErrNoPrompter), errors.Is(err, registry.ErrPromptFailed):
			writePermissionError(w, err.Error())
		default:
			writeInternalError(w, "permission request failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// handleGetPermission reports whether a device currently holds
// permission. The device name is the URL remainder after /permissions/,
// percent-decoded; a leading slash is restored when the plain form does
// not match (OS device paths start with one, URLs swallow it).
func (s *Server) handleGetPermission(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	if raw == "" {
		writeInvalidArgument(w, "device name is required")
		return
	}

	name, err := url.PathUnescape(raw)
	if err != nil {
		writeInvalidArgument(w, "malformed device name")
		return
	}

	entry, lookupErr := s.registry.Query(name)
	if lookupErr != nil && !strings.HasPrefix(name, "/") {
		name = "/" + name
		entry, lookupErr = s.registry.Query(name)
	}
	if lookupErr != nil {
		writeDeviceNotFound(w, "device not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deviceName":    entry.Descriptor.DeviceName,
		"hasPermission": entry.Permission == registry.PermissionGranted,
		"permission":    string(entry.Permission),
	})
}

// handleStats returns registry statistics plus WebSocket client count.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.registry.GetStats()

	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"registry":         stats,
		"websocketClients": clients,
	})
}

// validDeviceType reports whether the string names a known classification.
func validDeviceType(s string) bool {
	switch usb.DeviceType(s) {
	case usb.TypeScanner, usb.TypeKeyboard, usb.TypePrinter,
		usb.TypeCardReader, usb.TypeUnknown:
		return true
	}
	return false
}
