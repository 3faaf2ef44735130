package session

import "context"
import "math"
import "strings"
import "testing"
import "time"

import "github.com/neurlang/dtrain/weights"

func TestMerge(t *testing.T) {
	d := weights.NewDictionary()
	m := NewMaster(nil, d, 1, 1, nil)
	f := d.ID("F")
	m.Merge(weights.Vector{f: 2}, 1)
	m.Merge(weights.Vector{f: 4}, 2)
	if x := m.Weights().Get(f); x != 3 {
		t.Errorf("cma = %v", x)
	}
	m.Rate = 0.5
	m.Merge(weights.Vector{f: 6}, 3)
	if x := m.Weights().Get(f); x != 3 {
		t.Errorf("scaled cma = %v", x)
	}
}

func TestDownpour(t *testing.T) {
	for _, workers := range []int{1, 2} {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var conns []Conn
		var done = make(chan error, workers)
		for i := 0; i < workers; i++ {
			master, worker := newPipe()
			conns = append(conns, master)
			s, _ := newSession(t, "")
			go func() {
				done <- NewWorker(s).Run(ctx, worker)
			}()
		}
		d := weights.NewDictionary()
		m := NewMaster(conns, d, 2, 1, nil)
		w, err := m.Run(ctx, strings.NewReader("a ||| x\na ||| x\na ||| x\nno references\n"))
		if err != nil {
			t.Fatal(err)
		}
		f1, f2 := w.Get(d.ID("F1")), w.Get(d.ID("F2"))
		if f1 <= 0 || f2 >= 0 {
			t.Errorf("%d workers: weights %s", workers, weights.String(w, d))
		}
		// a single worker misranks only the first sentence, every later
		// update is empty and the average decays to 1/6
		if workers == 1 && (math.Abs(f1-1.0/6) > 1e-9 || math.Abs(f2+1.0/6) > 1e-9) {
			t.Errorf("weights %s", weights.String(w, d))
		}
		for i := 0; i < workers; i++ {
			if err := <-done; err != nil {
				t.Errorf("worker: %v", err)
			}
		}
		cancel()
	}
}

func TestWorkerTranslate(t *testing.T) {
	master, worker := newPipe()
	s, _ := newSession(t, "")
	done := make(chan error, 1)
	go func() {
		done <- NewWorker(s).Run(context.Background(), worker)
	}()
	receive(context.Background(), master)
	if r := request(t, master, "act:translate a"); r != "x" {
		t.Errorf("translate %q", r)
	}
	if r := request(t, master, "a ||| y"); r != "F1=-1 F2=1" {
		t.Errorf("update %q", r)
	}
	master.Send([]byte("F1=5 F2=-5"))
	if r := request(t, master, "get_weight F1"); r != "5" {
		t.Errorf("F1 = %q", r)
	}
	// no pair is misranked under the pushed weights
	if r := request(t, master, "a ||| x"); r != "" {
		t.Errorf("update %q", r)
	}
	master.Send([]byte("F1=5 F2=-5"))
	if r := request(t, master, "get_weight F2"); r != "-5" {
		t.Errorf("collecting changed the weights: F2 = %q", r)
	}
	if r := request(t, master, "shutdown"); r != ReplyOff {
		t.Errorf("shutdown %q", r)
	}
	if err := <-done; err != nil {
		t.Error(err)
	}
}
