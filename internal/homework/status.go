package homework

import "fmt"

// Status is a review status code reported by the API.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

var verdicts = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Verdict returns the human-readable text for s.
func Verdict(s Status) (string, bool) {
	v, ok := verdicts[s]
	return v, ok
}

// Homework is one submitted assignment.
type Homework struct {
	Name   string
	Status Status
}

// Decode extracts a Homework from one element of the homeworks list.
// An absent or empty status decodes to the empty Status; ParseStatus
// rejects it.
func Decode(raw any) (Homework, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Homework{}, Errorf(KindMalformedResponse, "домашняя работа не является словарём: %T", raw)
	}
	name, ok := m[KeyName].(string)
	if !ok {
		return Homework{}, Errorf(KindMalformedResponse, "в домашней работе отсутствует ключ %s", KeyName)
	}
	hw := Homework{Name: name}
	switch s := m[KeyStatus].(type) {
	case nil:
	case string:
		hw.Status = Status(s)
	default:
		return Homework{}, Errorf(KindMalformedResponse, "статус домашней работы %q не является строкой: %T", name, s)
	}
	return hw, nil
}

// ParseStatus builds the notification text for hw.
func ParseStatus(hw Homework) (string, error) {
	if hw.Status == "" {
		return "", Errorf(KindMissingStatusField, "в домашней работе %q отсутствует статус", hw.Name)
	}
	verdict, ok := Verdict(hw.Status)
	if !ok {
		return "", Errorf(KindUnknownStatusCode, "статуса %s нет в списке известных статусов", hw.Status)
	}
	return fmt.Sprintf("Изменился статус проверки работы \"%s\". %s", hw.Name, verdict), nil
}

// Translate decodes raw and returns the homework together with its message.
func Translate(raw any) (Homework, string, error) {
	hw, err := Decode(raw)
	if err != nil {
		return Homework{}, "", err
	}
	msg, err := ParseStatus(hw)
	if err != nil {
		return hw, "", err
	}
	return hw, msg, nil
}
