package link

import (
	"bufio"
	"net"
	"sync"
)

// fakeBoard answers the link protocol on one end of a net.Pipe.
type fakeBoard struct {
	mx     sync.Mutex
	lines  []string
	status string

	// reply returns the response to a command, "" for none.
	reply func(line string) string
}

func newPipe(b *fakeBoard) net.Conn {
	host, board := net.Pipe()
	go b.serve(board)
	return host
}

func (b *fakeBoard) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	var line []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			return
		}
		switch c {
		case '?':
			b.mx.Lock()
			st := b.status
			b.mx.Unlock()
			if st != "" {
				conn.Write([]byte(st + "\n"))
			}
		case '\n':
			l := string(line)
			line = line[:0]
			b.mx.Lock()
			b.lines = append(b.lines, l)
			reply := b.reply
			b.mx.Unlock()
			resp := "ok"
			if reply != nil {
				resp = reply(l)
			}
			if resp != "" {
				conn.Write([]byte(resp + "\n"))
			}
		default:
			line = append(line, c)
		}
	}
}

func (b *fakeBoard) setStatus(s string) {
	b.mx.Lock()
	b.status = s
	b.mx.Unlock()
}

func (b *fakeBoard) received() []string {
	b.mx.Lock()
	defer b.mx.Unlock()
	return append([]string(nil), b.lines...)
}
