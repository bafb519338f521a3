// Package jobs 定时任务：每日物化各区域的分配快照
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/callplan/callplan/internal/config"
	"github.com/callplan/callplan/internal/metrics"
	"github.com/callplan/callplan/internal/repository"
	"github.com/callplan/callplan/pkg/logger"
	"github.com/callplan/callplan/pkg/model"
	"github.com/callplan/callplan/pkg/planner"
)

const materializeTimeout = 5 * time.Minute

// Scheduler 封装 cron 实例与物化任务所需的数据访问
type Scheduler struct {
	cron          *cron.Cron
	cfg           config.JobsConfig
	zones         *repository.ZoneRepository
	provinces     *repository.ProvinceRepository
	volumes       *repository.CallVolumeRepository
	params        *repository.ParametersRepository
	distributions *repository.DistributionRepository
}

// NewScheduler 创建定时任务调度器
func NewScheduler(
	cfg config.JobsConfig,
	zones *repository.ZoneRepository,
	provinces *repository.ProvinceRepository,
	volumes *repository.CallVolumeRepository,
	params *repository.ParametersRepository,
	distributions *repository.DistributionRepository,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		cfg:           cfg,
		zones:         zones,
		provinces:     provinces,
		volumes:       volumes,
		params:        params,
		distributions: distributions,
	}
}

// Start 注册并启动定时任务。未启用时为空操作。
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		logger.Info().Msg("定时任务未启用")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.MaterializeSpec, s.materializeAll); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Str("spec", s.cfg.MaterializeSpec).Msg("定时任务已启动")
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("定时任务已停止")
}

// materializeAll 为每个区域、每种日期类型计算并保存次日的分配快照
func (s *Scheduler) materializeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), materializeTimeout)
	defer cancel()

	planDate := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	logger.Info().Str("plan_date", planDate).Msg("开始物化分配快照")

	zones, _, err := s.zones.List(ctx, repository.DefaultListFilter().WithLimit(1000))
	if err != nil {
		logger.Error().Err(err).Msg("物化失败: 查询区域列表出错")
		metrics.MaterializeRunsTotal.WithLabelValues("error").Inc()
		return
	}

	failed := 0
	for _, zone := range zones {
		for _, dayType := range []model.DayType{model.DayTypeRegular, model.DayTypeHoliday} {
			if err := s.materializeZone(ctx, zone, dayType, planDate); err != nil {
				logger.Error().Err(err).
					Str("zone_id", zone.ID.String()).
					Str("day_type", string(dayType)).
					Msg("物化区域快照失败")
				failed++
			}
		}
	}

	if failed > 0 {
		metrics.MaterializeRunsTotal.WithLabelValues("error").Inc()
	} else {
		metrics.MaterializeRunsTotal.WithLabelValues("ok").Inc()
	}
	logger.Info().Int("zones", len(zones)).Int("failed", failed).Msg("物化分配快照完成")
}

// materializeZone 计算单个区域在指定日期类型下的计划并持久化
func (s *Scheduler) materializeZone(ctx context.Context, zone *model.Zone, dayType model.DayType, planDate string) error {
	provinces, err := s.provinces.ListByZone(ctx, zone.ID)
	if err != nil {
		return err
	}
	if len(provinces) == 0 {
		return nil
	}

	volumes, err := s.volumes.ListByZone(ctx, zone.ID, dayType)
	if err != nil {
		return err
	}
	if len(volumes) == 0 {
		return nil
	}

	params, err := s.params.Get(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	plan := planner.BuildPlan(planner.Input{
		ZoneID:    zone.ID,
		DayType:   dayType,
		Provinces: provinces,
		Volumes:   volumes,
		Params:    params,
	})
	metrics.RecordPlanComputation(string(dayType), totalAssigned(plan), plan.UnmetDemand, time.Since(start))

	_, err = s.distributions.Save(ctx, zone.ID, planDate, "scheduler", plan)
	return err
}

func totalAssigned(plan *model.Plan) int {
	total := 0
	for _, p := range plan.Periods {
		total += p.Assigned
	}
	return total
}
