package public

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/queue"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	visitorCookieName   = "chestno_visitor"
	visitorCookieMaxAge = 365 * 24 * 60 * 60
)

// visitorKey returns the stable per-visitor key that keeps A/B variant
// assignment sticky. The cookie survives IP changes; mint sets one on
// first contact. Cookie-less clients fall back to an IP+UA fingerprint.
func (h *Handler) visitorKey(c *gin.Context, mint bool) string {
	if key, err := c.Cookie(visitorCookieName); err == nil && strings.TrimSpace(key) != "" {
		return key
	}
	if mint {
		key := uuid.NewString()
		session := h.Config.Session
		c.SetCookie(visitorCookieName, key, visitorCookieMaxAge, "/", session.CookieDomain, session.Secure, true)
		return key
	}
	return service.DeriveVisitorKey(c.ClientIP(), c.Request.UserAgent())
}

// ResolveScan answers a scanned QR code with a redirect. Bookkeeping
// (analytics row, counters, rewards, anomaly check) normally runs in
// the worker; with the queue disabled it runs inline, best effort.
func (h *Handler) ResolveScan(c *gin.Context) {
	slug := c.Param("slug")
	visitorKey := h.visitorKey(c, true)

	res, err := h.ResolverService.Resolve(slug, visitorKey)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.String(http.StatusNotFound, "unknown code")
			return
		}
		shared.RequestLog(c).Errorw("scan_resolve_failed", "slug", slug, "error", err)
		c.String(http.StatusInternalServerError, "try again later")
		return
	}

	var userID uint
	if value, ok := c.Get("user_id"); ok {
		if id, ok := value.(uint); ok {
			userID = id
		}
	}

	payload := queue.ScanRecordPayload{
		QRCodeID:   res.QRCode.ID,
		SourceKind: res.SourceKind,
		SourceID:   res.SourceID,
		VisitorKey: visitorKey,
		UserID:     userID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		ScannedAt:  time.Now(),
	}
	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueScanRecord(payload); err != nil {
			shared.RequestLog(c).Warnw("scan_record_enqueue_failed", "slug", slug, "error", err)
		}
		if err := h.QueueClient.EnqueueAnomalyCheck(queue.AnomalyCheckPayload{QRCodeID: res.QRCode.ID}); err != nil {
			shared.RequestLog(c).Warnw("anomaly_check_enqueue_failed", "slug", slug, "error", err)
		}
	} else {
		if err := h.ScanService.Record(payload); err != nil {
			shared.RequestLog(c).Warnw("scan_record_inline_failed", "slug", slug, "error", err)
		}
		if err := h.AnomalyService.CheckQRCode(res.QRCode.ID); err != nil {
			shared.RequestLog(c).Warnw("anomaly_check_inline_failed", "slug", slug, "error", err)
		}
	}

	c.Redirect(http.StatusFound, res.URL)
}

// ResolveInfo answers what a scan of the code would do right now,
// without recording anything. Integrations and the org dashboard use
// it to preview the live destination.
func (h *Handler) ResolveInfo(c *gin.Context) {
	slug := c.Param("slug")

	res, err := h.ResolverService.Resolve(slug, h.visitorKey(c, false))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"slug":        res.QRCode.Slug,
		"url":         res.URL,
		"source_kind": res.SourceKind,
		"source_id":   res.SourceID,
		"product_id":  res.QRCode.ProductID,
	})
}

// GetQRImage renders the printable PNG for a code.
func (h *Handler) GetQRImage(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	img, err := h.QRImageService.Render(service.RenderInput{
		Slug:       c.Param("slug"),
		Size:       size,
		Foreground: c.Query("fg"),
		Background: c.Query("bg"),
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	if match := c.GetHeader("If-None-Match"); match != "" && match == img.ETag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("ETag", img.ETag)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", img.PNG)
}
