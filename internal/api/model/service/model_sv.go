package modelService

import (
	"fmt"

	"BioVision/internal/api/model"
	"BioVision/internal/entity"
	contextPkg "BioVision/pkg/context"
	websocketPkg "BioVision/pkg/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *modelService) Train(ctx context.Context, req model.TrainRequest) (entity.TrainResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !model.ValidModelName(req.ModelName) {
		return entity.TrainResult{}, model.ErrInvalidModelName
	}
	if !s.training.TryLock() {
		return entity.TrainResult{}, model.ErrTrainingInProgress
	}
	defer s.training.Unlock()

	saved, err := s.labels.SaveAll(ctx)
	if err != nil {
		return entity.TrainResult{}, fmt.Errorf("%w: %v", model.ErrFlushLabels, err)
	}

	payload := websocketPkg.TrainPayload{
		ModelName:     req.ModelName,
		TestSplit:     model.DefaultTestSplit,
		Seed:          model.DefaultSeed,
		CustomOptions: req.CustomOptions,
	}
	if req.TestSplit != nil {
		payload.TestSplit = *req.TestSplit
	}
	if req.Seed != nil {
		payload.Seed = *req.Seed
	}

	fields := logrus.Fields{
		"request_id": requestID,
		"model":      req.ModelName,
		"labels":     saved.Saved,
		"test_split": payload.TestSplit,
		"seed":       payload.Seed,
		"operator":   contextPkg.GetOperator(ctx),
	}
	s.log.WithFields(fields).Info("Starting training run")

	resp, err := s.bridge.Train(ctx, payload)
	if err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Error("Training request failed")
		return entity.TrainResult{}, err
	}

	if !resp.OK {
		fields["error"] = resp.Error
		s.log.WithFields(fields).Warn("Training run failed")
		return entity.TrainResult{OK: false, Output: resp.Output, Error: resp.Error}, nil
	}

	metrics := model.ParseTrainOutput(resp.Output)
	result := entity.TrainResult{
		OK:         true,
		Output:     resp.Output,
		TrainError: metrics.TrainError,
		TestError:  metrics.TestError,
		ModelPath:  metrics.ModelPath,
	}

	if metrics.TrainError != nil {
		fields["train_error"] = *metrics.TrainError
	}
	if metrics.TestError != nil {
		fields["test_error"] = *metrics.TestError
	}
	s.log.WithFields(fields).Info("Training run finished")

	return result, nil
}

func (s *modelService) Test(ctx context.Context, name string) (model.TestResult, error) {
	if _, err := s.modelRepository.GetModel(name); err != nil {
		return model.TestResult{}, err
	}

	resp, err := s.bridge.Test(ctx, name)
	if err != nil {
		return model.TestResult{}, err
	}
	if !resp.OK {
		return model.TestResult{OK: false, Output: resp.Output, Error: resp.Error}, nil
	}

	if len(resp.Results) > 0 {
		return model.TestResult{OK: true, Results: resp.Results}, nil
	}
	if results, ok := model.LastJSONObject(resp.Output); ok {
		return model.TestResult{OK: true, Results: results}, nil
	}
	return model.TestResult{OK: true, Output: resp.Output}, nil
}

func (s *modelService) ListModels(ctx context.Context) ([]entity.TrainedModel, error) {
	return s.modelRepository.ListModels()
}

func (s *modelService) GetModel(ctx context.Context, name string) (entity.TrainedModel, error) {
	return s.modelRepository.GetModel(name)
}

func (s *modelService) RenameModel(ctx context.Context, oldName, newName string) error {
	if err := s.modelRepository.RenameModel(oldName, newName); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"from":       oldName,
		"to":         newName,
		"operator":   contextPkg.GetOperator(ctx),
	}).Info("Model renamed")
	return nil
}

func (s *modelService) DeleteModel(ctx context.Context, name string) error {
	if err := s.modelRepository.DeleteModel(name); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"model":      name,
		"operator":   contextPkg.GetOperator(ctx),
	}).Info("Model deleted")
	return nil
}
