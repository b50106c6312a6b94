package avatar

import (
	"bytes"
	"path"
	"strings"

	"github.com/disintegration/imaging"

	commonerrors "task-manager/pkg/common/errors"
)

// 上传约束：仅png/jpg/jpeg，不超过1MB
const MaxFileSize = 1000000

const targetSize = 250

var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Process 校验并规范化上传的头像：
// 解码 → 硬缩放到250x250（不保持宽高比）→ 重编码为PNG
func Process(filename string, data []byte) ([]byte, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExts[ext] {
		return nil, commonerrors.Validationf("please upload png, jpg or jpeg file only")
	}
	if len(data) > MaxFileSize {
		return nil, commonerrors.Validationf("file exceeds %d bytes", MaxFileSize)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, commonerrors.Validationf("unable to decode image")
	}

	resized := imaging.Resize(img, targetSize, targetSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, commonerrors.Validationf("unable to encode image")
	}
	return buf.Bytes(), nil
}
