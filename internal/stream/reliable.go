// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package stream

import (
	"fmt"
	"io"
)

// reliableProtocol transfers blocks directly over the TCP connection,
// with no sequence header. Short writes are retried until the block
// completes or an error occurs.
type reliableProtocol struct{}

func (reliableProtocol) Send(s *Stream) (int, error) {
	written := 0
	for written < len(s.Buffer) {
		n, err := s.Conn.Write(s.Buffer[written:])
		if n > 0 {
			written += n
		}
		if err != nil {
			if written > 0 {
				return written, nil
			}
			return 0, fmt.Errorf("reliable send: %w", err)
		}
	}
	return written, nil
}

func (reliableProtocol) Recv(s *Stream) (int, error) {
	n, err := s.Conn.Read(s.Buffer)
	if err != nil {
		if err == io.EOF {
			return n, fmt.Errorf("reliable recv: %w", io.EOF)
		}
		if n > 0 {
			return n, nil
		}
		return 0, nil
	}
	return n, nil
}
