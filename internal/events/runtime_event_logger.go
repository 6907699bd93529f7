package events

import "github.com/sirupsen/logrus"

func logNotice(log logrus.FieldLogger, n Notice) {
	entry := log.WithFields(logrus.Fields{
		"notice": n.ID,
		"type":   n.Type,
	})
	for k, v := range n.Metadata {
		entry = entry.WithField(k, v)
	}

	switch n.Type {
	case NoticeError:
		entry.Error(n.Message)
	case NoticeWarn:
		entry.Warn(n.Message)
	case NoticeSuccess, NoticeInfo:
		entry.Info(n.Message)
	default:
		entry.Info(n.Message)
	}
}
