package templates

import (
	"strconv"

	"agent-console/models"
)

func statusLabelClass(s models.StageStatus) string {
	if c := s.CSSClass(); c != "" {
		return "status-label " + c
	}
	return "status-label"
}

func progressStyle(progress int) string {
	return "width: " + strconv.Itoa(progress) + "%"
}
