package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"stacked-parking/internal/parking"
)

// lotCollector exposes the current lot's occupancy on every scrape. It
// reports nothing while no lot exists.
type lotCollector struct {
	session *parking.Session

	laneOccupancy *prometheus.Desc
	laneCapacity  *prometheus.Desc
	queueLength   *prometheus.Desc
}

func newLotCollector(session *parking.Session) *lotCollector {
	return &lotCollector{
		session: session,
		laneOccupancy: prometheus.NewDesc("stacked_parking_lane_occupancy",
			"Cars currently parked in a lane.", []string{"lane"}, nil),
		laneCapacity: prometheus.NewDesc("stacked_parking_lane_capacity",
			"Maximum number of cars per lane.", nil, nil),
		queueLength: prometheus.NewDesc("stacked_parking_entrance_queue_length",
			"Cars waiting in the entrance queue.", nil, nil),
	}
}

func (c *lotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.laneOccupancy
	ch <- c.laneCapacity
	ch <- c.queueLength
}

func (c *lotCollector) Collect(ch chan<- prometheus.Metric) {
	lot, err := c.session.Lot()
	if err != nil {
		return
	}

	s, err := lot.ReadSnapshot()
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.laneCapacity, prometheus.GaugeValue, float64(s.LaneCapacity))
	ch <- prometheus.MustNewConstMetric(c.queueLength, prometheus.GaugeValue, float64(len(s.Entrance)))
	for _, l := range s.Lanes {
		ch <- prometheus.MustNewConstMetric(c.laneOccupancy, prometheus.GaugeValue, float64(l.Size), strconv.Itoa(l.Index))
	}
}
