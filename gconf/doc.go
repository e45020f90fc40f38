/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Every package keeps at most one configuration object, stored under the
"_c:<package>" key. Configurations are loaded from the "conf" section of the
genesis file and validated before they are written.

Not being able to get a configuration value is a critical condition for the
application and there is no recovery path for the client. Application must be
terminated and configured correctly.
*/
package gconf
