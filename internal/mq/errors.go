package mq

import "errors"

// ErrNoChannel — канал закрыт или ещё не открыт (идёт переподключение).
var ErrNoChannel = errors.New("no AMQP channel available")
