package utils

import (
	"encoding/json"
	"net"

	"event-feedback-server/models"
	"event-feedback-server/storage"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// Audit writes an audit row for an authenticated mutation. before/after may
// be nil (create has no before, delete has no after).
func Audit(ctx iris.Context, action, resource string, resourceID uint, before interface{}, after interface{}) {
	var beforeStr, afterStr string
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			beforeStr = string(b)
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			afterStr = string(a)
		}
	}
	var actorID uint
	if tok := jsonWT.Get(ctx); tok != nil {
		if at, ok := tok.(*AccessToken); ok {
			actorID = at.ID
		}
	}
	row := models.AuditLog{
		ActorUserID: actorID,
		Action:      action,
		Resource:    resource,
		ResourceID:  resourceID,
		BeforeJSON:  beforeStr,
		AfterJSON:   afterStr,
		IPAddress:   clientIP(ctx),
	}
	storage.DB.Create(&row)
}

func clientIP(ctx iris.Context) string {
	if ip := ctx.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	ip, _, _ := net.SplitHostPort(ctx.RemoteAddr())
	return ip
}
