package service

import (
	"hr_training_backend/internal/util"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// QRRenderer 将二维码内容渲染为图片
type QRRenderer interface {
	Render(content string, size int) ([]byte, error)
}

// PNGQRRenderer 基于 go-qrcode 的 PNG 渲染
type PNGQRRenderer struct {
	Level qrcode.RecoveryLevel
}

func NewPNGQRRenderer() *PNGQRRenderer {
	return &PNGQRRenderer{Level: qrcode.Medium}
}

func (r *PNGQRRenderer) Render(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = util.QRImageSize
	}
	return qrcode.Encode(content, r.Level, size)
}

const qrCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// 252 = 36*7，丢弃 >= 252 的字节保证各字符等概率
const qrCodeByteLimit = 256 - 256%len(qrCodeAlphabet)

// NewTrainingQRCode 生成 TRN-XXXXXXXX 格式的模块二维码，随机源取自 UUIDv4 的随机字节
func NewTrainingQRCode() string {
	buf := make([]byte, 0, util.QRCodeRandomLen)
	for len(buf) < util.QRCodeRandomLen {
		id := uuid.New()
		for i, b := range id {
			// 第 6、8 字节包含版本号和变体位
			if i == 6 || i == 8 || int(b) >= qrCodeByteLimit {
				continue
			}
			buf = append(buf, qrCodeAlphabet[int(b)%len(qrCodeAlphabet)])
			if len(buf) == util.QRCodeRandomLen {
				break
			}
		}
	}
	return util.QRCodePrefix + string(buf)
}
