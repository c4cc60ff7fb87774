/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package controller

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	powerv1 "github.com/AMDEPYC/uncore-frequency-manager/api/v1"
	"github.com/AMDEPYC/uncore-frequency-manager/internal/tuning"
	"github.com/AMDEPYC/uncore-frequency-manager/internal/uncore"
)

var errUncoreNotSupported = errors.New("uncore frequency control is not supported on this node")

// UncoreFrequencyProfileReconciler reconciles a UncoreFrequencyProfile object
type UncoreFrequencyProfileReconciler struct {
	client.Client
	Log    logr.Logger
	Scheme *runtime.Scheme
	Host   *tuning.Host
	Uncore *uncore.Plugin
}

//+kubebuilder:rbac:groups=power.amdepyc.com,resources=uncorefrequencyprofiles,verbs=get;list;watch;create;update;patch;delete
//+kubebuilder:rbac:groups=power.amdepyc.com,resources=uncorefrequencyprofiles/status,verbs=get;update;patch

// Reconcile applies the max frequency delta of a profile to the uncore
// domains of this node. A profile that is rejected leaves the domains with
// whatever the profile applied before. A deleted profile is rolled back and
// its domains are released.
func (r *UncoreFrequencyProfileReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var err error
	logger := r.Log.WithValues("uncorefrequencyprofile", req.NamespacedName)

	if req.Namespace != PowerNamespace {
		err := fmt.Errorf("incorrect namespace")
		logger.Error(err, "resource is not in the power-manager namespace, ignoring")
		return ctrl.Result{}, err
	}

	profile := &powerv1.UncoreFrequencyProfile{}
	defer func() { _ = writeUpdatedStatusErrsIfRequired(ctx, r.Status(), profile, err) }()

	err = r.Client.Get(ctx, req.NamespacedName, profile)
	logger.V(5).Info("retrieving the uncorefrequencyprofile instance")
	if err != nil {
		if !apierrors.IsNotFound(err) {
			logger.Error(err, "error retrieving reconciled uncorefrequencyprofile")
			return ctrl.Result{}, err
		}

		logger.V(5).Info("uncorefrequencyprofile not found, rolling back its domains")
		err = nil
		r.removeInstance(req.Name, logger)
		return ctrl.Result{}, nil
	}

	if !r.Host.Supported() {
		// the driver may have been loaded after the agent started
		r.Host.Rescan()
	}
	if !r.Host.Supported() {
		err = errUncoreNotSupported
		logger.Info("no uncore domains discovered, profile is a no-op on this node")
		return ctrl.Result{}, r.updateDomainStatus(ctx, profile, logger)
	}

	options := map[string]string{
		uncore.MaxFreqKHzDeltaOption: strconv.Itoa(profile.Spec.MaxFreqKHzDelta),
	}
	_, err = r.Host.ReplaceInstance(req.Name, profile.Spec.Domains, options, profile.Spec.Simulate)
	if err != nil {
		logger.Error(err, "uncore max frequency delta rejected")
	} else if !profile.Spec.Simulate {
		err = r.verifyInstance(req.Name, logger)
	}

	return ctrl.Result{}, r.updateDomainStatus(ctx, profile, logger)
}

func (r *UncoreFrequencyProfileReconciler) removeInstance(name string, logger logr.Logger) {
	if _, exists := r.Host.Instance(name); !exists {
		return
	}
	if err := r.Host.DestroyInstance(name, true); err != nil {
		logger.Error(err, "failed to roll back uncore domains")
	}
}

// verifyInstance reads the domains back after a write.
func (r *UncoreFrequencyProfileReconciler) verifyInstance(name string, logger logr.Logger) error {
	verified, err := r.Host.VerifyInstance(name)
	if err != nil {
		logger.Error(err, "failed to read back uncore domains")
		return err
	}
	if !verified {
		return fmt.Errorf("uncore domains of profile %s do not hold the applied delta", name)
	}
	return nil
}

// updateDomainStatus records the delta and resulting ceiling of every domain
// the profile currently holds. Domains that rejected the delta are omitted,
// and nothing is recorded when the profile holds no domains at all.
func (r *UncoreFrequencyProfileReconciler) updateDomainStatus(ctx context.Context,
	profile *powerv1.UncoreFrequencyProfile, logger logr.Logger) error {
	var domains []powerv1.UncoreDomainStatus
	var scheme string
	if instance, exists := r.Host.Instance(profile.Name); exists {
		scheme = r.Uncore.Registry().Scheme().String()
		for _, device := range instance.Devices {
			value, ok := instance.Effective(device, uncore.MaxFreqKHzDeltaOption)
			if !ok {
				continue
			}
			delta, err := uncore.ParseDelta(value)
			if err != nil {
				continue
			}
			status := powerv1.UncoreDomainStatus{ID: device, Delta: delta}
			if bounds, err := r.Uncore.Controller().Bounds(device); err == nil {
				status.EffectiveMaxKHz = bounds.InitialMaxKHz - delta
			}
			domains = append(domains, status)
		}
	}

	if scheme == profile.Status.Scheme && reflect.DeepEqual(domains, profile.Status.Domains) {
		return nil
	}
	profile.Status.Scheme = scheme
	profile.Status.Domains = domains
	if err := r.Status().Update(ctx, profile); err != nil {
		logger.Error(err, "failed to write uncore domain status")
		return err
	}
	return nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *UncoreFrequencyProfileReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&powerv1.UncoreFrequencyProfile{}).
		WithEventFilter(predicate.GenerationChangedPredicate{}).
		Complete(r)
}
