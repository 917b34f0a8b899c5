package bot

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// ErrInvalidText 收到的完整消息不是合法的 UTF-8 文本
var ErrInvalidText = errors.New("bot: inbound data is not valid utf-8 text")

// Decoder 将 TCP 字节流切分为以 '\n' 结尾的文本消息
// 每次 Feed 只返回本次新完成的消息，末尾不完整的片段保留到下一次
type Decoder struct {
	buf []byte
}

// Feed 追加一次读取到的数据，按到达顺序返回已完整的消息
// 完整部分若无法按 UTF-8 解码，则丢弃该部分并返回空批次和 ErrInvalidText
func (d *Decoder) Feed(chunk []byte) ([]string, error) {
	d.buf = append(d.buf, chunk...)

	end := bytes.LastIndexByte(d.buf, '\n')
	if end < 0 {
		return nil, nil
	}
	complete := d.buf[:end]
	rest := d.buf[end+1:]
	// 剩余片段可能包含被拆开的多字节字符，只校验完整部分
	valid := utf8.Valid(complete)

	var msgs []string
	if valid {
		msgs = make([]string, 0, bytes.Count(complete, []byte{'\n'})+1)
		for _, line := range bytes.Split(complete, []byte{'\n'}) {
			msgs = append(msgs, string(line))
		}
	}
	d.buf = append(d.buf[:0], rest...)
	if !valid {
		return nil, ErrInvalidText
	}
	return msgs, nil
}

// Pending 返回尚未以分隔符结束的缓冲字节数
func (d *Decoder) Pending() int { return len(d.buf) }

// Close 对端关闭连接：未结束的尾部片段直接丢弃，不作为消息输出
func (d *Decoder) Close() {
	d.buf = nil
}
