package homework

import (
	"encoding/json"
	"math"
)

// Response keys.
const (
	KeyHomeworks   = "homeworks"
	KeyCurrentDate = "current_date"
	KeyName        = "homework_name"
	KeyStatus      = "status"
)

// CheckResponse verifies that raw (a decoded JSON document) has the shape
// {"homeworks": [...], "current_date": <int>} and returns the homeworks
// list unchanged.
//
// Checks run shallow to deep: mapping, key presence, then value types.
func CheckResponse(raw any) ([]any, error) {
	resp, ok := raw.(map[string]any)
	if !ok {
		return nil, Errorf(KindMalformedResponse, "ответ API не является словарём: %T", raw)
	}
	homeworks, ok := resp[KeyHomeworks]
	if !ok {
		return nil, Errorf(KindMissingHomeworksKey, "ключ %s отсутствует в ответе API", KeyHomeworks)
	}
	currentDate, ok := resp[KeyCurrentDate]
	if !ok {
		return nil, Errorf(KindMissingCurrentDateKey, "ключ %s отсутствует в ответе API", KeyCurrentDate)
	}
	list, ok := homeworks.([]any)
	if !ok {
		return nil, Errorf(KindMalformedResponse, "в ответе API по ключу %s значение не является списком: %T", KeyHomeworks, homeworks)
	}
	if !isInteger(currentDate) {
		return nil, Errorf(KindMalformedResponse, "в ответе API по ключу %s значение не является целым числом: %v", KeyCurrentDate, currentDate)
	}
	return list, nil
}

func isInteger(v any) bool {
	switch x := v.(type) {
	case json.Number:
		_, err := x.Int64()
		return err == nil
	case float64:
		return !math.IsInf(x, 0) && x == math.Trunc(x)
	case int, int32, int64:
		return true
	default:
		return false
	}
}
