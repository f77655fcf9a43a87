package dto

import "safeher/model"

type AlertsPageResponse struct {
	Alerts []model.Alert `json:"alerts"`
	PageInfo
}

func ToAlertsPageResponse(alerts []model.Alert, page, limit int, total int64) AlertsPageResponse {
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return AlertsPageResponse{Alerts: alerts, PageInfo: NewPageInfo(page, limit, total)}
}
