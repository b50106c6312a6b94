package model

import (
	"encoding/json"

	commonerrors "task-manager/pkg/common/errors"
)

// DecodeAllowed 按字段白名单解析PATCH请求体
// 请求体必须是非空JSON对象，且键集合为allowed的子集，否则整体拒绝
func DecodeAllowed(body []byte, allowed ...string) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, commonerrors.Validationf("invalid request body")
	}
	if len(fields) == 0 {
		return nil, commonerrors.Validationf("update requires at least one field")
	}

	permitted := map[string]bool{}
	for _, name := range allowed {
		permitted[name] = true
	}
	for name := range fields {
		if !permitted[name] {
			return nil, commonerrors.Validationf("update not allowed for property %q", name)
		}
	}
	return fields, nil
}
