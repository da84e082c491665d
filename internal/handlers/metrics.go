package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	salesSettledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workhub_sales_settled_total",
		Help: "Number of sales settled successfully",
	})
	vouchersSoldTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workhub_vouchers_sold_total",
		Help: "Number of vouchers marked sold",
	})
	endOfDayRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workhub_end_of_day_runs_total",
		Help: "Number of end-of-day reconciliation runs",
	})
)
