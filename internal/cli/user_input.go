package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
)

type userInputProvider struct {
	reader *bufio.Reader
}

func newUserInputProvider(in io.Reader) *userInputProvider {
	return &userInputProvider{
		reader: bufio.NewReader(in),
	}
}

// ReadLine ждёт строку ввода или отмену ctx.
// Горутина чтения остаётся висеть до следующей строки, если ctx отменён раньше.
func (p *userInputProvider) ReadLine(ctx context.Context) (string, error) {
	answerChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		answer, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || answer == "") {
			errChan <- err
			return
		}
		answerChan <- strings.TrimSpace(answer)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case answer := <-answerChan:
		return answer, nil
	}
}
