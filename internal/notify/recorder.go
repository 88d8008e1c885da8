package notify

import "sync"

// Message is one recorded notification.
type Message struct {
	Title string
	Body  string
}

// Recorder keeps every notification in memory. It can be told to fail.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
	Fail error
}

func (r *Recorder) Notify(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.msgs = append(r.msgs, Message{Title: title, Body: body})
	return nil
}

// Messages returns a copy of what was delivered.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}
