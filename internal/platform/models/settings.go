package models

// FormSet is the allow-list of form ids selected for forwarding.
type FormSet map[int64]struct{}

func NewFormSet(ids ...int64) FormSet {
	set := make(FormSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s FormSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

func (s FormSet) Len() int {
	return len(s)
}

// ForwardingConfig is read from the settings store once per submission.
type ForwardingConfig struct {
	WebhookURL      string
	SelectedFormIDs FormSet
}

// Form is a published form known to the host form system.
type Form struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type Settings struct {
	WebhookURL    string  `json:"webhook_url"`
	SelectedForms []int64 `json:"selected_forms"`
}
